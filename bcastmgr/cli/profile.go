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

	"github.com/spf13/cobra"

	"mynewt.apache.org/leabcast/bcastmgr/bmutil"
	"mynewt.apache.org/leabcast/bcastmgr/config"
	"mynewt.apache.org/newt/util"
)

func profileAddCmd(cmd *cobra.Command, args []string) {
	pm := config.GlobalProfileMgr()

	// Profile name required
	if len(args) == 0 {
		bmUsage(cmd, util.NewNewtError("Need broadcast profile name"))
	}

	name := args[0]
	p := config.NewProfile()
	p.Name = name

	for _, kv := range args[1:] {
		if err := p.Set(kv); err != nil {
			bmUsage(cmd, err)
		}
	}

	// Reject profiles that can't be turned into a broadcast.
	if _, err := p.StateMachineConfig(); err != nil {
		bmUsage(cmd, util.ChildNewtError(err))
	}

	if err := pm.AddProfile(p); err != nil {
		bmUsage(cmd, err)
	}

	fmt.Printf("Broadcast profile %s successfully added\n", name)
}

func profileShowCmd(cmd *cobra.Command, args []string) {
	pm := config.GlobalProfileMgr()

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	found := false
	for _, p := range pm.ProfileList() {
		if name != "" && p.Name != name {
			continue
		}

		if !found {
			found = true
			fmt.Printf("Broadcast profiles: \n")
		}
		fmt.Printf("  %s\n", p)
	}

	if !found {
		if name == "" {
			fmt.Printf("No broadcast profiles found!\n")
		} else {
			fmt.Printf("No broadcast profiles found matching %s\n", name)
		}
	}
}

func profileDelCmd(cmd *cobra.Command, args []string) {
	pm := config.GlobalProfileMgr()

	// Profile name required
	if len(args) == 0 {
		bmUsage(cmd, util.NewNewtError("Need broadcast profile name"))
	}

	name := args[0]
	if err := pm.DeleteProfile(name); err != nil {
		bmUsage(cmd, err)
	}

	fmt.Printf("Broadcast profile %s successfully deleted.\n", name)
}

func profileCmd() *cobra.Command {
	pCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage " + bmutil.ToolInfo.ShortName + " broadcast profiles",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	addCmd := &cobra.Command{
		Use:   "add <profile> <key=value ...>",
		Short: "Add a " + bmutil.ToolInfo.ShortName + " broadcast profile",
		Run:   profileAddCmd,
	}
	pCmd.AddCommand(addCmd)

	delCmd := &cobra.Command{
		Use:   "delete <profile>",
		Short: "Delete a " + bmutil.ToolInfo.ShortName + " broadcast profile",
		Run:   profileDelCmd,
	}
	pCmd.AddCommand(delCmd)

	showHelpText := "Show the named broadcast profile, or all broadcast\n"
	showHelpText += "profiles if no name is specified.\n"

	showCmd := &cobra.Command{
		Use:   "show [profile]",
		Short: "Show " + bmutil.ToolInfo.ShortName + " broadcast profiles",
		Long:  showHelpText,
		Run:   profileShowCmd,
	}
	pCmd.AddCommand(showCmd)

	return pCmd
}
