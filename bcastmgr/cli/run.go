/**
 * Licensed to the Apache Software Foundation (ASF) under one
 * or more contributor license agreements.  See the NOTICE file
 * distributed with this work for additional information
 * regarding copyright ownership.  The ASF licenses this file
 * to you under the Apache License, Version 2.0 (the
 * "License"); you may not use this file except in compliance
 * with the License.  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mynewt.apache.org/leabcast/bcast/bcdefs"
	bc "mynewt.apache.org/leabcast/bcast/broadcaster"
	"mynewt.apache.org/leabcast/bcast/sim"
	"mynewt.apache.org/newt/util"
)

var failNames = []string{
	"create", "enable", "disable", "update", "remove", "big", "datapath",
}

// Builds the fault set for a --fail argument.
func parseFaults(name string, bis int) (sim.Faults, error) {
	f := sim.Faults{}
	st := bcdefs.HCI_ERR_UNSPECIFIED

	switch name {
	case "":
	case "create":
		f.CreateAnnouncementStatus = st
	case "enable":
		f.EnableStatus = st
	case "disable":
		f.DisableStatus = st
	case "update":
		f.UpdateStatus = st
	case "remove":
		f.RemoveStatus = st
	case "big":
		f.CreateBigStatus = bcdefs.HCI_ERR_MEM_CAPACITY
	case "datapath":
		f.DataPathFailBis = bis
		f.DataPathStatus = st
	default:
		return f, util.FmtNewtError("invalid fault \"%s\"; must be one of: %s",
			name, strings.Join(failNames, ", "))
	}

	return f, nil
}

type runStep struct {
	name   string
	msg    bc.Message
	expect bc.State
}

var runSteps = []runStep{
	{"start", bc.MSG_START, bc.STATE_STREAMING},
	{"suspend", bc.MSG_SUSPEND, bc.STATE_CONFIGURED},
	{"resume", bc.MSG_START, bc.STATE_STREAMING},
	{"stop", bc.MSG_STOP, bc.STATE_STOPPED},
}

func runReport(step string, got bc.State, expect bc.State) {
	if got == expect {
		fmt.Printf("%-10s --> %s\n", step, got)
	} else {
		fmt.Printf("%-10s --> %s (expected %s)\n", step, got, expect)
	}
}

func printFailures(s *session) {
	for _, err := range s.failures() {
		fmt.Printf("    %s\n", err.Error())
	}
}

func runRunCmd(cmd *cobra.Command, args []string) {
	failName, _ := cmd.Flags().GetString("fail")
	failBis, _ := cmd.Flags().GetInt("fail-bis")
	mute, _ := cmd.Flags().GetBool("mute")
	rename, _ := cmd.Flags().GetString("rename")

	faults, err := parseFaults(failName, failBis)
	if err != nil {
		bmUsage(cmd, err)
	}

	s, err := newSession(faults, false)
	if err != nil {
		bmUsage(nil, err)
	}
	defer s.close()

	state, err := s.initialize()
	if err != nil {
		bmUsage(nil, err)
	}
	runReport("initialize", state, bc.STATE_CONFIGURED)
	printFailures(s)
	if state == bc.STATE_STOPPED {
		return
	}

	if mute {
		s.do(func(sm *bc.BroadcastStateMachine) { sm.SetMuted(true) })
	}

	for i, step := range runSteps {
		state, err := s.send(step.msg)
		if err != nil {
			bmUsage(nil, err)
		}
		runReport(step.name, state, step.expect)
		printFailures(s)

		if state == bc.STATE_STOPPED {
			break
		}

		// Exercise a live announcement update once streaming.
		if i == 0 && rename != "" && state == bc.STATE_STREAMING {
			s.do(func(sm *bc.BroadcastStateMachine) {
				sm.UpdatePublicBroadcastAnnouncement(uint32(sm.BroadcastId()),
					rename, sm.PublicBroadcastAnnouncement())
			})
		}
	}

	s.do(func(sm *bc.BroadcastStateMachine) {
		fmt.Printf("muted=%t\n", sm.IsMuted())
	})

	fmt.Printf("Radio requests:\n")
	for _, req := range s.radio.Requests() {
		fmt.Printf("    %s\n", req)
	}
}

func runCmd() *cobra.Command {
	runHelpText := "Drive a simulated broadcast source through its full\n"
	runHelpText += "lifecycle: initialize, start, suspend, resume, stop.\n"

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a broadcast lifecycle against the simulated radio",
		Long:  runHelpText,
		Run:   runRunCmd,
	}

	cmd.Flags().String("fail", "",
		"inject a failure: "+strings.Join(failNames, ", "))
	cmd.Flags().Int("fail-bis", 1,
		"1-based stream whose data path fails (with --fail=datapath)")
	cmd.Flags().Bool("mute", false, "mute the broadcast before starting")
	cmd.Flags().String("rename", "",
		"update the broadcast name while streaming")

	return cmd
}
