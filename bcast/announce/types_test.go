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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastId(t *testing.T) {
	assert.True(t, BroadcastId(0xffffff).Valid())
	assert.False(t, BroadcastId(0x1000000).Valid())
	assert.Equal(t, "0x00abcd", BroadcastId(0xabcd).String())
}

func TestParseBroadcastCode(t *testing.T) {
	code, err := ParseBroadcastCode("abc")
	require.NoError(t, err)
	assert.Equal(t, byte('a'), code[0])
	assert.Equal(t, byte(0), code[3])
	assert.Equal(t, "61626300000000000000000000000000", code.String())

	_, err = ParseBroadcastCode("")
	assert.Error(t, err)
	_, err = ParseBroadcastCode("0123456789abcdefg")
	assert.Error(t, err)
}

func TestLTVBytesSorted(t *testing.T) {
	l := LTV{
		0x04: {0x64, 0x00},
		0x01: {0x08},
	}
	assert.Equal(t, []byte{0x02, 0x01, 0x08, 0x03, 0x04, 0x64, 0x00}, l.Bytes())

	parsed, err := ParseLTV(l.Bytes())
	require.NoError(t, err)
	assert.Equal(t, l, parsed)

	_, err = ParseLTV([]byte{0x05, 0x01, 0x00})
	assert.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	pub := PublicBroadcastAnnouncementData{
		Features: PBP_FEATURE_STANDARD_QUALITY,
		Metadata: LTV{METADATA_TYPE_LANGUAGE: []byte("eng")},
	}
	c := pub.Clone()
	c.Metadata[METADATA_TYPE_LANGUAGE][0] = 'x'
	assert.Equal(t, []byte("eng"), pub.Metadata[METADATA_TYPE_LANGUAGE])

	var nilLtv LTV
	assert.Nil(t, nilLtv.Clone())
}

func TestCodecIdString(t *testing.T) {
	assert.Equal(t, "lc3", CodecIdLc3.String())
	assert.Equal(t, "0x03", CodecId{CodingFormat: 0x03}.String())
	assert.Equal(t, "vendor(company=0x0001 codec=0x0002)",
		CodecId{CODING_FORMAT_VENDOR, 1, 2}.String())
}
