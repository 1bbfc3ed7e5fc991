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
)

type State uint8

const (
	STATE_STOPPED     State = 0
	STATE_CONFIGURING State = 1
	STATE_CONFIGURED  State = 2
	STATE_ENABLING    State = 3
	STATE_DISABLING   State = 4
	STATE_STOPPING    State = 5
	STATE_STREAMING   State = 6
)

const STATE_COUNT = 7

var stateStringMap = map[State]string{
	STATE_STOPPED:     "stopped",
	STATE_CONFIGURING: "configuring",
	STATE_CONFIGURED:  "configured",
	STATE_ENABLING:    "enabling",
	STATE_DISABLING:   "disabling",
	STATE_STOPPING:    "stopping",
	STATE_STREAMING:   "streaming",
}

func (s State) String() string {
	str := stateStringMap[s]
	if str == "" {
		return fmt.Sprintf("invalid(%d)", uint8(s))
	}

	return str
}

type Message uint8

const (
	MSG_START   Message = 0
	MSG_SUSPEND Message = 1
	MSG_STOP    Message = 2
)

const MSG_COUNT = 3

var messageStringMap = map[Message]string{
	MSG_START:   "start",
	MSG_SUSPEND: "suspend",
	MSG_STOP:    "stop",
}

func (m Message) String() string {
	str := messageStringMap[m]
	if str == "" {
		return fmt.Sprintf("invalid(%d)", uint8(m))
	}

	return str
}

func MessageFromString(s string) (Message, error) {
	for m, name := range messageStringMap {
		if s == name {
			return m, nil
		}
	}

	return 0, fmt.Errorf("Invalid message string: %s", s)
}

const (
	ADV_SID_UNDEFINED uint8 = 0xFF

	// Periodic advertising interval bounds, in 1.25 ms units.
	PA_INTERVAL_MAX uint16 = 0xA0
	PA_INTERVAL_MIN uint16 = 0x50

	LE_AUDIO_BROADCAST_REG_ID = 0x1

	// Random non-resolvable own address.
	BROADCAST_ADVERTISING_TYPE = 0x2
)

// Extended advertising interval bounds, in 0.625 ms units.
const (
	ADV_INTERVAL_MIN uint32 = 0xA0
	ADV_INTERVAL_MAX uint32 = 0xA0
)

const ADV_TX_POWER_DFLT int8 = -20

// BIG handles 0xF0 and up are reserved.
const BIG_HANDLE_MAX uint8 = 0xEF

const ISO_DATA_PATH_DIR_INPUT uint8 = 0x00
