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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mynewt.apache.org/leabcast/bcast/bcutil"
	"mynewt.apache.org/leabcast/bcastmgr/bmutil"
	"mynewt.apache.org/newt/util"
)

var BcastmgrLogLevel log.Level

func Commands() *cobra.Command {
	logLevelStr := ""
	bmCmd := &cobra.Command{
		Use:   bmutil.ToolInfo.ExeName,
		Short: bmutil.ToolInfo.ShortName + " drives LE Audio broadcast sources",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			BcastmgrLogLevel, err = log.ParseLevel(logLevelStr)
			if err != nil {
				bmUsage(nil, util.ChildNewtError(err))
			}

			err = util.Init(BcastmgrLogLevel, "", util.VERBOSITY_DEFAULT)
			if err != nil {
				bmUsage(nil, err)
			}
			bcutil.SetLogLevel(BcastmgrLogLevel)
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.HelpFunc()(cmd, args)
		},
	}

	bmCmd.PersistentFlags().StringVarP(&bmutil.ProfileName, "profile", "p",
		bmutil.Environ.Profile, "broadcast profile to use")

	bmCmd.PersistentFlags().StringArrayVarP(&bmutil.Overrides, "set", "s",
		nil, "override a profile setting (key=value); may be repeated")

	bmCmd.PersistentFlags().Float64VarP(&bmutil.Timeout, "timeout", "t",
		bmutil.Environ.Timeout,
		"timeout in seconds (partial seconds allowed)")

	bmCmd.PersistentFlags().StringVarP(&logLevelStr, "loglevel", "l",
		bmutil.Environ.LogLevel,
		"log level to use")

	versCmd := &cobra.Command{
		Use:     "version",
		Short:   "Display the " + bmutil.ToolInfo.ShortName + " version number",
		Example: "  " + bmutil.ToolInfo.ExeName + " version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n",
				bmutil.ToolInfo.LongName,
				bmutil.ToolInfo.VersionString)
		},
	}
	bmCmd.AddCommand(versCmd)

	bmCmd.AddCommand(profileCmd())
	bmCmd.AddCommand(runCmd())
	bmCmd.AddCommand(statusCmd())
	bmCmd.AddCommand(interactiveCmd())

	return bmCmd
}
