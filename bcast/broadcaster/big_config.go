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
	"sort"
	"strings"

	"github.com/fatih/structs"

	"mynewt.apache.org/leabcast/bcast/bcutil"
)

// Parameters of an established BIG, as reported by the controller's LE
// Create BIG Complete event.
type BigConfig struct {
	Status              uint8    `structs:"status"`
	BigId               uint8    `structs:"big_id"`
	BigSyncDelay        uint32   `structs:"big_sync_delay"`
	TransportLatencyBig uint32   `structs:"transport_latency_big"`
	Phy                 uint8    `structs:"phy"`
	Nse                 uint8    `structs:"nse"`
	Bn                  uint8    `structs:"bn"`
	Pto                 uint8    `structs:"pto"`
	Irc                 uint8    `structs:"irc"`
	MaxPdu              uint16   `structs:"max_pdu"`
	IsoInterval         uint16   `structs:"iso_interval"`
	ConnectionHandles   []uint16 `structs:"connection_handles"`
}

func NewBigConfig(evt *CreateBigCompleteEvt) *BigConfig {
	return &BigConfig{
		Status:              evt.Status,
		BigId:               evt.BigHandle,
		BigSyncDelay:        evt.BigSyncDelay,
		TransportLatencyBig: evt.TransportLatencyBig,
		Phy:                 evt.Phy,
		Nse:                 evt.Nse,
		Bn:                  evt.Bn,
		Pto:                 evt.Pto,
		Irc:                 evt.Irc,
		MaxPdu:              evt.MaxPdu,
		IsoInterval:         evt.IsoInterval,
		ConnectionHandles:   bcutil.CopyHandles(evt.ConnHandles),
	}
}

func (c *BigConfig) Copy() *BigConfig {
	if c == nil {
		return nil
	}

	cc := *c
	cc.ConnectionHandles = bcutil.CopyHandles(c.ConnectionHandles)
	return &cc
}

// HasHandle indicates whether the given ISO connection handle belongs to this
// BIG.
func (c *BigConfig) HasHandle(handle uint16) bool {
	for _, h := range c.ConnectionHandles {
		if h == handle {
			return true
		}
	}

	return false
}

func (c *BigConfig) Map() map[string]interface{} {
	s := structs.New(c)
	s.TagName = "structs"
	return s.Map()
}

func (c *BigConfig) String() string {
	if c == nil {
		return "<nil>"
	}

	m := c.Map()

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}

	return strings.Join(parts, " ")
}
