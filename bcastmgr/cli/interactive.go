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
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/abiosoft/ishell.v2"

	bc "mynewt.apache.org/leabcast/bcast/broadcaster"
	"mynewt.apache.org/leabcast/bcast/sim"
	"mynewt.apache.org/leabcast/bcastmgr/bmutil"
)

var shellSesn *session

func shellSend(c *ishell.Context, msg bc.Message) {
	state, err := shellSesn.send(msg)
	if err != nil {
		c.Println("Error:", err)
		return
	}
	c.Println("state:", state)
	for _, err := range shellSesn.failures() {
		c.Println("   ", err.Error())
	}
}

func startCmd(c *ishell.Context) {
	shellSend(c, bc.MSG_START)
}

func suspendCmd(c *ishell.Context) {
	shellSend(c, bc.MSG_SUSPEND)
}

func stopCmd(c *ishell.Context) {
	shellSend(c, bc.MSG_STOP)
}

func muteCmd(c *ishell.Context) {
	shellSesn.do(func(sm *bc.BroadcastStateMachine) { sm.SetMuted(true) })
}

func unmuteCmd(c *ishell.Context) {
	shellSesn.do(func(sm *bc.BroadcastStateMachine) { sm.SetMuted(false) })
}

func updateNameCmd(c *ishell.Context) {
	if len(c.Args) == 0 {
		c.Println(c.Cmd.HelpText())
		return
	}
	name := strings.Join(c.Args, " ")

	shellSesn.do(func(sm *bc.BroadcastStateMachine) {
		sm.UpdatePublicBroadcastAnnouncement(uint32(sm.BroadcastId()), name,
			sm.PublicBroadcastAnnouncement())
	})
}

func showCmd(c *ishell.Context) {
	var snap Snapshot
	shellSesn.do(func(sm *bc.BroadcastStateMachine) {
		snap = takeSnapshot(sm, shellSesn.radio)
	})

	b, err := EncodeSnapshot(snap, "json")
	if err != nil {
		c.Println("Error:", err)
		return
	}
	c.Println(string(b))
}

func startInteractive(cmd *cobra.Command, args []string) {
	s, err := newSession(sim.Faults{}, false)
	if err != nil {
		bmUsage(nil, err)
	}
	shellSesn = s
	defer s.close()

	if _, err := s.initialize(); err != nil {
		bmUsage(nil, err)
	}

	// by default, new shell includes 'exit', 'help' and 'clear' commands.
	shell := ishell.New()
	shell.SetPrompt("> ")

	shell.Println()
	shell.Println(" " + bmutil.ToolInfo.LongName + " shell mode:")
	shell.Println("	Broadcast profile: ", bmutil.ProfileName)
	shell.Println()

	shell.AddCmd(&ishell.Cmd{
		Name: "start",
		Help: "Start or resume streaming",
		Func: startCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "suspend",
		Help: "Suspend streaming; keep announcing",
		Func: suspendCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "stop",
		Help: "Stop the broadcast and remove its advertising set",
		Func: stopCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "mute",
		Help: "Mute the broadcast",
		Func: muteCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "unmute",
		Help: "Unmute the broadcast",
		Func: unmuteCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "update-name",
		Help: "Change the public broadcast name: update-name <name>",
		Func: updateNameCmd,
	})

	shell.AddCmd(&ishell.Cmd{
		Name: "show",
		Help: "Print the broadcast's current status",
		Func: showCmd,
	})

	shell.Run()
	shell.Close()

	s.send(bc.MSG_STOP)
}

func interactiveCmd() *cobra.Command {
	shellCmd := &cobra.Command{
		Use:   "interactive",
		Short: "Run " + bmutil.ToolInfo.ShortName + " interactive mode",
		Run:   startInteractive,
	}

	return shellCmd
}
