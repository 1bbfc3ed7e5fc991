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

package bcdefs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Assigned numbers used by LE Audio broadcast announcements.
const (
	UUID_BASIC_AUDIO_ANNOUNCEMENT      uint16 = 0x1851
	UUID_BROADCAST_AUDIO_ANNOUNCEMENT  uint16 = 0x1852
	UUID_PUBLIC_BROADCAST_ANNOUNCEMENT uint16 = 0x1856
)

// Advertising data types.
const (
	AD_TYPE_FLAGS          uint8 = 0x01
	AD_TYPE_SERVICE_DATA16 uint8 = 0x16
	AD_TYPE_BROADCAST_NAME uint8 = 0x30
)

// Max length of a single AD structure's payload (length byte covers the
// type byte too).
const AD_FIELD_MAX_LEN = 254

const BLE_ADDR_LEN = 6

type BleAddrType int

const (
	BLE_ADDR_TYPE_PUBLIC  BleAddrType = 0
	BLE_ADDR_TYPE_RANDOM  BleAddrType = 1
	BLE_ADDR_TYPE_RPA_PUB BleAddrType = 2
	BLE_ADDR_TYPE_RPA_RND BleAddrType = 3
)

var BleAddrTypeStringMap = map[BleAddrType]string{
	BLE_ADDR_TYPE_PUBLIC:  "public",
	BLE_ADDR_TYPE_RANDOM:  "random",
	BLE_ADDR_TYPE_RPA_PUB: "rpa_pub",
	BLE_ADDR_TYPE_RPA_RND: "rpa_rnd",
}

func BleAddrTypeToString(addrType BleAddrType) string {
	s := BleAddrTypeStringMap[addrType]
	if s == "" {
		return "???"
	}

	return s
}

func BleAddrTypeFromString(s string) (BleAddrType, error) {
	for addrType, name := range BleAddrTypeStringMap {
		if s == name {
			return addrType, nil
		}
	}

	return BleAddrType(0), fmt.Errorf("Invalid BleAddrType string: %s", s)
}

func (a BleAddrType) String() string {
	return BleAddrTypeToString(a)
}

func (a BleAddrType) MarshalJSON() ([]byte, error) {
	return json.Marshal(BleAddrTypeToString(a))
}

func (a *BleAddrType) UnmarshalJSON(data []byte) error {
	var err error

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*a, err = BleAddrTypeFromString(s)
	return err
}

// BleAddr is a 48-bit device address.  The zero value is the empty address.
type BleAddr struct {
	Bytes [BLE_ADDR_LEN]byte
}

var BleAddrEmpty = BleAddr{}

func ParseBleAddr(s string) (BleAddr, error) {
	ba := BleAddr{}

	toks := strings.Split(strings.ToLower(s), ":")
	if len(toks) != BLE_ADDR_LEN {
		return ba, fmt.Errorf("invalid BLE addr string: %s", s)
	}

	for i, t := range toks {
		u64, err := strconv.ParseUint(t, 16, 8)
		if err != nil {
			return ba, err
		}
		ba.Bytes[i] = byte(u64)
	}

	return ba, nil
}

func (ba BleAddr) IsEmpty() bool {
	return ba == BleAddrEmpty
}

func (ba BleAddr) String() string {
	var buf bytes.Buffer
	buf.Grow(len(ba.Bytes) * 3)

	for i, b := range ba.Bytes {
		if i != 0 {
			buf.WriteString(":")
		}
		fmt.Fprintf(&buf, "%02x", b)
	}

	return buf.String()
}

func (ba BleAddr) MarshalJSON() ([]byte, error) {
	return json.Marshal(ba.String())
}

func (ba *BleAddr) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	var err error
	*ba, err = ParseBleAddr(s)
	if err != nil {
		return err
	}

	return nil
}

// LE PHY identifiers, as used by the LE Create BIG command.
const (
	PHY_LE_1M    uint8 = 0x01
	PHY_LE_2M    uint8 = 0x02
	PHY_LE_CODED uint8 = 0x04
)

var PhyStringMap = map[uint8]string{
	PHY_LE_1M:    "1m",
	PHY_LE_2M:    "2m",
	PHY_LE_CODED: "coded",
}

func PhyToString(phy uint8) string {
	s := PhyStringMap[phy]
	if s == "" {
		return "???"
	}

	return s
}

func PhyFromString(s string) (uint8, error) {
	for phy, name := range PhyStringMap {
		if s == name {
			return phy, nil
		}
	}

	return 0, fmt.Errorf("Invalid PHY string: %s", s)
}
