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

package announce

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mynewt.apache.org/leabcast/bcast/bcdefs"
)

func TestPacketFields(t *testing.T) {
	p, err := Packet(nil).AppendServiceData16(0x1852, []byte{1, 2, 3})
	require.NoError(t, err)
	p, err = p.AppendField(bcdefs.AD_TYPE_BROADCAST_NAME, []byte("abc"))
	require.NoError(t, err)

	assert.Equal(t, []byte{
		0x06, 0x16, 0x52, 0x18, 0x01, 0x02, 0x03,
		0x04, 0x30, 'a', 'b', 'c',
	}, p.Bytes())

	assert.Equal(t, []byte{1, 2, 3}, p.ServiceData16(0x1852))
	assert.Nil(t, p.ServiceData16(0x1856))
	assert.Equal(t, []byte("abc"), p.Field(bcdefs.AD_TYPE_BROADCAST_NAME))
	assert.Nil(t, p.Field(bcdefs.AD_TYPE_FLAGS))
}

func TestPacketFieldTooLong(t *testing.T) {
	_, err := Packet(nil).AppendField(0x30,
		bytes.Repeat([]byte{'x'}, bcdefs.AD_FIELD_MAX_LEN+1))
	assert.Error(t, err)

	_, err = Packet(nil).AppendField(0x30,
		bytes.Repeat([]byte{'x'}, bcdefs.AD_FIELD_MAX_LEN))
	assert.NoError(t, err)
}

func TestPacketTruncated(t *testing.T) {
	p := Packet{0x05, 0x30, 'a'}
	assert.Nil(t, p.Field(0x30))
	assert.Nil(t, p.ServiceData16(0x1852))
}

func TestPacketMalformedLength(t *testing.T) {
	long := append([]byte{0xff, 0x30}, bytes.Repeat([]byte{'x'}, 10)...)
	svc := append([]byte{0xff, 0x16, 0x52, 0x18}, bytes.Repeat([]byte{0}, 10)...)

	tests := []struct {
		name string
		p    Packet
	}{
		{"zero length", Packet{0x00, 0x30}},
		{"zero length after field", Packet{0x02, 0x01, 0x06, 0x00, 0x30}},
		{"max length truncated", Packet(long)},
		{"max length service data", Packet(svc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, tt.p.Field(bcdefs.AD_TYPE_BROADCAST_NAME))
			assert.Nil(t, tt.p.Field(bcdefs.AD_TYPE_SERVICE_DATA16))
			assert.Nil(t, tt.p.ServiceData16(0x1852))
		})
	}
}

func TestPacketMaxLengthField(t *testing.T) {
	data := bytes.Repeat([]byte{'x'}, 0xfe)
	p, err := Packet(nil).AppendField(bcdefs.AD_TYPE_FLAGS, []byte{0x06})
	require.NoError(t, err)
	p = append(p, 0xff, bcdefs.AD_TYPE_BROADCAST_NAME)
	p = append(p, data...)

	assert.Equal(t, data, p.Field(bcdefs.AD_TYPE_BROADCAST_NAME))
	assert.Equal(t, []byte{0x06}, p.Field(bcdefs.AD_TYPE_FLAGS))
	assert.Nil(t, p.ServiceData16(0x1852))
}
