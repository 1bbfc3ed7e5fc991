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

package broadcaster

import (
	"fmt"

	"mynewt.apache.org/leabcast/bcast/announce"
	"mynewt.apache.org/leabcast/bcast/bcdefs"
)

// Immutable description of a broadcast source.  Only the announcements are
// replaced after creation, through the update operations.
type StateMachineConfig struct {
	IsPublic           bool
	BroadcastId        announce.BroadcastId
	BroadcastName      string
	StreamingPhy       uint8
	Config             announce.BroadcastConfiguration
	PublicAnnouncement announce.PublicBroadcastAnnouncementData
	Announcement       announce.BasicAudioAnnouncementData

	// Nil for an unencrypted broadcast.
	BroadcastCode *announce.BroadcastCode
}

func (cfg *StateMachineConfig) Validate() error {
	if !cfg.BroadcastId.Valid() {
		return fmt.Errorf("invalid broadcast ID: %s", cfg.BroadcastId)
	}

	if _, ok := bcdefs.PhyStringMap[cfg.StreamingPhy]; !ok {
		return fmt.Errorf("invalid streaming PHY: 0x%02x", cfg.StreamingPhy)
	}

	numBis := cfg.Config.NumBises()
	if numBis == 0 {
		return fmt.Errorf("broadcast configuration contains no BISes")
	}
	if numBis > 0x1f {
		return fmt.Errorf("too many BISes: %d", numBis)
	}

	if len(cfg.Announcement.Subgroups) == 0 {
		return fmt.Errorf("basic audio announcement contains no subgroups")
	}

	if cfg.IsPublic && cfg.BroadcastName == "" {
		return fmt.Errorf("public broadcast requires a broadcast name")
	}

	return nil
}

func (cfg StateMachineConfig) String() string {
	return fmt.Sprintf("broadcast_id=%s name=\"%s\" public=%t phy=%s "+
		"num_bis=%d encrypted=%t",
		cfg.BroadcastId, cfg.BroadcastName, cfg.IsPublic,
		bcdefs.PhyToString(cfg.StreamingPhy), cfg.Config.NumBises(),
		cfg.BroadcastCode != nil)
}

// Returns a copy that shares no mutable storage with the original.
func (cfg *StateMachineConfig) clone() StateMachineConfig {
	c := *cfg
	c.Announcement = cfg.Announcement.Clone()
	c.PublicAnnouncement = cfg.PublicAnnouncement.Clone()
	if cfg.BroadcastCode != nil {
		code := *cfg.BroadcastCode
		c.BroadcastCode = &code
	}

	return c
}
