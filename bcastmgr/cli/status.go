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
	"encoding/hex"
	"fmt"

	"github.com/fatih/structs"
	"github.com/spf13/cobra"
	"github.com/ugorji/go/codec"

	bc "mynewt.apache.org/leabcast/bcast/broadcaster"
	"mynewt.apache.org/leabcast/bcast/sim"
	"mynewt.apache.org/newt/util"
)

// Point-in-time view of a broadcast source.
type Snapshot struct {
	BroadcastId    string                 `codec:"broadcast_id"`
	BroadcastName  string                 `codec:"broadcast_name"`
	Public         bool                   `codec:"public"`
	Encrypted      bool                   `codec:"encrypted"`
	State          string                 `codec:"state"`
	Sid            uint8                  `codec:"sid"`
	BigHandle      uint8                  `codec:"big_handle"`
	OwnAddress     string                 `codec:"own_address"`
	OwnAddressType string                 `codec:"own_address_type"`
	Muted          bool                   `codec:"muted"`
	NumBis         int                    `codec:"num_bis"`
	PaInterval     uint16                 `codec:"pa_interval"`
	AdvData        string                 `codec:"adv_data"`
	PeriodicData   string                 `codec:"periodic_data"`
	BigConfig      map[string]interface{} `codec:"big_config,omitempty"`
}

func takeSnapshot(sm *bc.BroadcastStateMachine, radio *sim.Radio) Snapshot {
	snap := Snapshot{
		BroadcastId:    sm.BroadcastId().String(),
		BroadcastName:  sm.BroadcastName(),
		Public:         sm.IsPublicBroadcast(),
		Encrypted:      sm.BroadcastCode() != nil,
		State:          sm.State().String(),
		Sid:            sm.AdvertisingSid(),
		BigHandle:      sm.BigHandle(),
		OwnAddress:     sm.OwnAddress().String(),
		OwnAddressType: sm.OwnAddressType().String(),
		Muted:          sm.IsMuted(),
		PaInterval:     sm.PaInterval(),
	}

	bcfg := sm.BroadcastConfig()
	snap.NumBis = bcfg.NumBises()

	if adv, per, err := radio.Payloads(sm.AdvertisingSid()); err == nil {
		snap.AdvData = hex.EncodeToString(adv)
		snap.PeriodicData = hex.EncodeToString(per)
	}

	if cfg := sm.BigConfig(); cfg != nil {
		snap.BigConfig = cfg.Map()
	}

	return snap
}

// Encodes a snapshot as "json" or "cbor".  CBOR output is returned as-is;
// callers hex-encode it for display.
func EncodeSnapshot(snap Snapshot, format string) ([]byte, error) {
	var h codec.Handle
	switch format {
	case "json":
		h = &codec.JsonHandle{Indent: 4}
	case "cbor":
		h = new(codec.CborHandle)
	default:
		return nil, util.FmtNewtError("invalid format \"%s\"; "+
			"must be json or cbor", format)
	}

	// Convert to a map, use "codec" tag which is compatible with "structs"
	s := structs.New(snap)
	s.TagName = "codec"
	m := s.Map()
	if snap.BigConfig == nil {
		delete(m, "big_config")
	}

	b := []byte{}
	enc := codec.NewEncoderBytes(&b, h)
	if err := enc.Encode(m); err != nil {
		return nil, util.ChildNewtError(err)
	}

	return b, nil
}

func statusRunCmd(cmd *cobra.Command, args []string) {
	format, _ := cmd.Flags().GetString("format")
	streaming, _ := cmd.Flags().GetBool("streaming")

	s, err := newSession(sim.Faults{}, true)
	if err != nil {
		bmUsage(nil, err)
	}
	defer s.close()

	if _, err := s.initialize(); err != nil {
		bmUsage(nil, err)
	}
	if streaming {
		if _, err := s.send(bc.MSG_START); err != nil {
			bmUsage(nil, err)
		}
	}

	// Let the address resolution complete.
	if err := s.tq.Flush(); err != nil {
		bmUsage(nil, util.ChildNewtError(err))
	}

	var snap Snapshot
	s.do(func(sm *bc.BroadcastStateMachine) {
		snap = takeSnapshot(sm, s.radio)
	})

	b, err := EncodeSnapshot(snap, format)
	if err != nil {
		bmUsage(cmd, err)
	}

	if format == "cbor" {
		fmt.Printf("%s\n", hex.EncodeToString(b))
	} else {
		fmt.Printf("%s\n", b)
	}

	s.send(bc.MSG_STOP)
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a snapshot of a configured broadcast source",
		Run:   statusRunCmd,
	}

	cmd.Flags().StringP("format", "f", "json", "output format: json or cbor")
	cmd.Flags().Bool("streaming", false, "start streaming before the snapshot")

	return cmd
}
