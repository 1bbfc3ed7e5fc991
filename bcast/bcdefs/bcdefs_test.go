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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBleAddr(t *testing.T) {
	a, err := ParseBleAddr("C0:DE:00:01:02:03")
	require.NoError(t, err)
	assert.Equal(t, "c0:de:00:01:02:03", a.String())
	assert.False(t, a.IsEmpty())
	assert.True(t, BleAddr{}.IsEmpty())

	_, err = ParseBleAddr("c0:de:00")
	assert.Error(t, err)
	_, err = ParseBleAddr("zz:de:00:01:02:03")
	assert.Error(t, err)
}

func TestBleAddrJson(t *testing.T) {
	type wrapper struct {
		Addr BleAddr     `json:"addr"`
		Type BleAddrType `json:"type"`
	}

	w := wrapper{
		Addr: BleAddr{Bytes: [BLE_ADDR_LEN]byte{1, 2, 3, 4, 5, 6}},
		Type: BLE_ADDR_TYPE_RANDOM,
	}

	b, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `{"addr":"01:02:03:04:05:06","type":"random"}`, string(b))

	var back wrapper
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, w, back)
}

func TestPhyStrings(t *testing.T) {
	for phy, name := range PhyStringMap {
		got, err := PhyFromString(name)
		require.NoError(t, err)
		assert.Equal(t, phy, got)
		assert.Equal(t, name, PhyToString(phy))
	}

	_, err := PhyFromString("3m")
	assert.Error(t, err)
	assert.Equal(t, "???", PhyToString(0x03))
}

func TestHciStatusToString(t *testing.T) {
	assert.Equal(t, "success", HciStatusToString(HCI_SUCCESS))
	assert.Equal(t, "unknown advertising id", HciStatusToString(HCI_ERR_UNK_ADV_ID))
	assert.Equal(t, "unknown (0xee)", HciStatusToString(0xee))
}
