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
	"github.com/pkg/errors"
)

// Codec specific configuration LTV types.
const (
	LTV_TYPE_SAMPLING_FREQ      uint8 = 0x01
	LTV_TYPE_FRAME_DURATION     uint8 = 0x02
	LTV_TYPE_CHANNEL_ALLOCATION uint8 = 0x03
	LTV_TYPE_OCTETS_PER_FRAME   uint8 = 0x04
)

// Metadata LTV types.
const (
	METADATA_TYPE_STREAMING_CONTEXTS uint8 = 0x02
	METADATA_TYPE_LANGUAGE           uint8 = 0x04
)

// Audio context bits.
const (
	CONTEXT_UNSPECIFIED    uint16 = 0x0001
	CONTEXT_CONVERSATIONAL uint16 = 0x0002
	CONTEXT_MEDIA          uint16 = 0x0004
	CONTEXT_GAME           uint16 = 0x0008
	CONTEXT_LIVE           uint16 = 0x0040
)

// Channel allocation bits.
const (
	ALLOCATION_FRONT_LEFT  uint32 = 0x00000001
	ALLOCATION_FRONT_RIGHT uint32 = 0x00000002
)

var samplingFreqCodeMap = map[uint32]uint8{
	8000:  0x01,
	11025: 0x02,
	16000: 0x03,
	22050: 0x04,
	24000: 0x05,
	32000: 0x06,
	44100: 0x07,
	48000: 0x08,
}

var frameDurationCodeMap = map[uint32]uint8{
	7500:  0x00,
	10000: 0x01,
}

func SamplingFreqCode(hz uint32) (uint8, error) {
	c, ok := samplingFreqCodeMap[hz]
	if !ok {
		return 0, errors.Errorf("unsupported sampling frequency: %d Hz", hz)
	}

	return c, nil
}

func SamplingFreqFromCode(code uint8) (uint32, error) {
	for hz, c := range samplingFreqCodeMap {
		if c == code {
			return hz, nil
		}
	}

	return 0, errors.Errorf("unknown sampling frequency code: 0x%02x", code)
}

func FrameDurationCode(us uint32) (uint8, error) {
	c, ok := frameDurationCodeMap[us]
	if !ok {
		return 0, errors.Errorf("unsupported frame duration: %d us", us)
	}

	return c, nil
}

// Lc3CodecSpecific builds LC3 codec specific configuration.  A zero
// allocation omits the channel allocation field.
func Lc3CodecSpecific(samplingHz uint32, frameDurationUs uint32,
	octetsPerFrame uint16, allocation uint32) (LTV, error) {

	sf, err := SamplingFreqCode(samplingHz)
	if err != nil {
		return nil, err
	}
	fd, err := FrameDurationCode(frameDurationUs)
	if err != nil {
		return nil, err
	}

	l := LTV{
		LTV_TYPE_SAMPLING_FREQ:    []byte{sf},
		LTV_TYPE_FRAME_DURATION:   []byte{fd},
		LTV_TYPE_OCTETS_PER_FRAME: []byte{byte(octetsPerFrame), byte(octetsPerFrame >> 8)},
	}
	if allocation != 0 {
		l[LTV_TYPE_CHANNEL_ALLOCATION] = AllocationLTV(allocation)[LTV_TYPE_CHANNEL_ALLOCATION]
	}

	return l, nil
}

// AllocationLTV builds a BIS level configuration holding only the channel
// allocation.
func AllocationLTV(allocation uint32) LTV {
	return LTV{
		LTV_TYPE_CHANNEL_ALLOCATION: []byte{
			byte(allocation), byte(allocation >> 8),
			byte(allocation >> 16), byte(allocation >> 24),
		},
	}
}

// Metadata builds announcement metadata with streaming audio contexts and an
// optional 3-letter ISO 639-3 language code.
func Metadata(contexts uint16, language string) (LTV, error) {
	l := LTV{
		METADATA_TYPE_STREAMING_CONTEXTS: []byte{byte(contexts), byte(contexts >> 8)},
	}

	if language != "" {
		if len(language) != 3 {
			return nil, errors.Errorf("invalid language code: \"%s\"", language)
		}
		l[METADATA_TYPE_LANGUAGE] = []byte(language)
	}

	return l, nil
}

// BasicAudioAnnouncementFromConfig derives a BASE from a broadcast
// configuration.  BIS indices are assigned from 1 in subgroup order.
func BasicAudioAnnouncementFromConfig(cfg BroadcastConfiguration,
	presentationDelayUs uint32, metadata LTV) BasicAudioAnnouncementData {

	d := BasicAudioAnnouncementData{
		PresentationDelayUs: presentationDelayUs,
	}

	idx := uint8(1)
	for _, sg := range cfg.Subgroups {
		asg := BasicAudioAnnouncementSubgroup{
			CodecConfig: BasicAudioAnnouncementCodecConfig{
				CodecId:             sg.CodecId,
				CodecSpecificParams: sg.CodecSpecific.Clone(),
			},
			Metadata: metadata.Clone(),
		}

		for _, bc := range sg.Bises {
			for i := uint8(0); i < bc.NumBis; i++ {
				asg.BisConfigs = append(asg.BisConfigs,
					BasicAudioAnnouncementBisConfig{
						BisIndex:            idx,
						CodecSpecificParams: bc.CodecSpecific.Clone(),
					})
				idx++
			}
		}

		d.Subgroups = append(d.Subgroups, asg)
	}

	return d
}

// DefaultConfiguration returns a two BIS stereo LC3 configuration.
func DefaultConfiguration(samplingHz uint32, octetsPerFrame uint16) (
	BroadcastConfiguration, error) {

	cs, err := Lc3CodecSpecific(samplingHz, 10000, octetsPerFrame, 0)
	if err != nil {
		return BroadcastConfiguration{}, err
	}

	return BroadcastConfiguration{
		Subgroups: []BroadcastSubgroupCodecConfig{{
			CodecId:       CodecIdLc3,
			CodecSpecific: cs,
			Bises: []BroadcastSubgroupBisCodecConfig{
				{NumBis: 1, CodecSpecific: AllocationLTV(ALLOCATION_FRONT_LEFT)},
				{NumBis: 1, CodecSpecific: AllocationLTV(ALLOCATION_FRONT_RIGHT)},
			},
			BitsPerSample: 16,
		}},
		Qos: BroadcastQosConfig{
			Rtn:                   4,
			MaxTransportLatencyMs: 60,
		},
		DataPath: DataPathConfig{
			IsoDataPathId: 0x00,
			CodecId:       CodecId{CodingFormat: 0x03},
		},
		SduIntervalUs: 10000,
		MaxSduOctets:  octetsPerFrame,
		Packing:       0,
		Framing:       0,
	}, nil
}
