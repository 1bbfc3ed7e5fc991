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

func TestSamplingFreqCodes(t *testing.T) {
	for hz, code := range samplingFreqCodeMap {
		got, err := SamplingFreqCode(hz)
		require.NoError(t, err)
		assert.Equal(t, code, got)

		back, err := SamplingFreqFromCode(code)
		require.NoError(t, err)
		assert.Equal(t, hz, back)
	}

	_, err := SamplingFreqCode(96000)
	assert.Error(t, err)
	_, err = SamplingFreqFromCode(0x20)
	assert.Error(t, err)
}

func TestLc3CodecSpecific(t *testing.T) {
	l, err := Lc3CodecSpecific(16000, 7500, 30, ALLOCATION_FRONT_RIGHT)
	require.NoError(t, err)

	assert.Equal(t, []uint8{
		LTV_TYPE_SAMPLING_FREQ,
		LTV_TYPE_FRAME_DURATION,
		LTV_TYPE_CHANNEL_ALLOCATION,
		LTV_TYPE_OCTETS_PER_FRAME,
	}, l.Types())
	assert.Equal(t, []byte{0x03}, l[LTV_TYPE_SAMPLING_FREQ])
	assert.Equal(t, []byte{0x00}, l[LTV_TYPE_FRAME_DURATION])
	assert.Equal(t, []byte{0x02, 0x00, 0x00, 0x00},
		l[LTV_TYPE_CHANNEL_ALLOCATION])
	assert.Equal(t, []byte{30, 0}, l[LTV_TYPE_OCTETS_PER_FRAME])

	_, err = Lc3CodecSpecific(16000, 5000, 30, 0)
	assert.Error(t, err)
}

func TestMetadata(t *testing.T) {
	l, err := Metadata(CONTEXT_MEDIA, "")
	require.NoError(t, err)
	assert.Equal(t, LTV{METADATA_TYPE_STREAMING_CONTEXTS: {0x04, 0x00}}, l)

	l, err = Metadata(CONTEXT_LIVE, "deu")
	require.NoError(t, err)
	assert.Equal(t, []byte("deu"), l[METADATA_TYPE_LANGUAGE])

	_, err = Metadata(CONTEXT_MEDIA, "en")
	assert.Error(t, err)
}

func TestBasicAudioAnnouncementFromConfig(t *testing.T) {
	cfg, err := DefaultConfiguration(48000, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.NumBises())

	md := LTV{METADATA_TYPE_STREAMING_CONTEXTS: {0x04, 0x00}}
	d := BasicAudioAnnouncementFromConfig(cfg, 40000, md)

	require.Len(t, d.Subgroups, 1)
	sg := d.Subgroups[0]
	assert.Equal(t, CodecIdLc3, sg.CodecConfig.CodecId)
	assert.Equal(t, md, sg.Metadata)

	require.Len(t, sg.BisConfigs, 2)
	assert.Equal(t, uint8(1), sg.BisConfigs[0].BisIndex)
	assert.Equal(t, uint8(2), sg.BisConfigs[1].BisIndex)
	assert.Equal(t, AllocationLTV(ALLOCATION_FRONT_RIGHT),
		sg.BisConfigs[1].CodecSpecificParams)

	// Nothing is shared with the source configuration.
	sg.CodecConfig.CodecSpecificParams[LTV_TYPE_SAMPLING_FREQ][0] = 0x01
	assert.Equal(t, byte(0x08),
		cfg.Subgroups[0].CodecSpecific[LTV_TYPE_SAMPLING_FREQ][0])
}
