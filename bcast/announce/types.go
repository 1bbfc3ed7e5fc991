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
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// 24-bit broadcast identifier.
type BroadcastId uint32

const BROADCAST_ID_MAX BroadcastId = 0xffffff

func (id BroadcastId) Valid() bool {
	return id <= BROADCAST_ID_MAX
}

func (id BroadcastId) String() string {
	return fmt.Sprintf("0x%06x", uint32(id))
}

const BROADCAST_CODE_LEN = 16

// 128-bit broadcast code used to encrypt the BIG.
type BroadcastCode [BROADCAST_CODE_LEN]byte

// Builds a broadcast code from an up-to-16 byte string; shorter strings are
// zero padded.
func ParseBroadcastCode(s string) (BroadcastCode, error) {
	var code BroadcastCode

	if len(s) == 0 || len(s) > BROADCAST_CODE_LEN {
		return code, errors.Errorf(
			"invalid broadcast code length: %d (expected 1-%d)",
			len(s), BROADCAST_CODE_LEN)
	}

	copy(code[:], s)
	return code, nil
}

func (c BroadcastCode) String() string {
	return hex.EncodeToString(c[:])
}

// Length/type/value structures keyed by type.  Encoded in ascending type
// order.
type LTV map[uint8][]byte

func (l LTV) Types() []uint8 {
	types := make([]uint8, 0, len(l))
	for t := range l {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

func (l LTV) Bytes() []byte {
	var b []byte
	for _, t := range l.Types() {
		v := l[t]
		b = append(b, byte(len(v)+1), t)
		b = append(b, v...)
	}

	return b
}

// Returns a deep copy.
func (l LTV) Clone() LTV {
	if l == nil {
		return nil
	}

	c := make(LTV, len(l))
	for t, v := range l {
		vc := make([]byte, len(v))
		copy(vc, v)
		c[t] = vc
	}

	return c
}

func ParseLTV(b []byte) (LTV, error) {
	l := LTV{}
	for len(b) > 0 {
		n := int(b[0])
		if n == 0 {
			b = b[1:]
			continue
		}
		if len(b) < n+1 {
			return nil, errors.Errorf("truncated LTV: need %d bytes, have %d",
				n+1, len(b))
		}
		v := make([]byte, n-1)
		copy(v, b[2:n+1])
		l[b[1]] = v
		b = b[n+1:]
	}

	return l, nil
}

const (
	CODING_FORMAT_LC3    uint8 = 0x06
	CODING_FORMAT_VENDOR uint8 = 0xff
)

type CodecId struct {
	CodingFormat    uint8
	VendorCompanyId uint16
	VendorCodecId   uint16
}

var CodecIdLc3 = CodecId{CodingFormat: CODING_FORMAT_LC3}

func (c CodecId) Bytes() []byte {
	return []byte{
		c.CodingFormat,
		byte(c.VendorCompanyId), byte(c.VendorCompanyId >> 8),
		byte(c.VendorCodecId), byte(c.VendorCodecId >> 8),
	}
}

func (c CodecId) String() string {
	if c.CodingFormat == CODING_FORMAT_VENDOR {
		return fmt.Sprintf("vendor(company=0x%04x codec=0x%04x)",
			c.VendorCompanyId, c.VendorCodecId)
	}
	if c.CodingFormat == CODING_FORMAT_LC3 {
		return "lc3"
	}
	return fmt.Sprintf("0x%02x", c.CodingFormat)
}

type BroadcastSubgroupBisCodecConfig struct {
	NumBis        uint8
	CodecSpecific LTV
}

type BroadcastSubgroupCodecConfig struct {
	CodecId       CodecId
	CodecSpecific LTV
	Bises         []BroadcastSubgroupBisCodecConfig
	BitsPerSample uint8
}

func (s *BroadcastSubgroupCodecConfig) NumBises() int {
	n := 0
	for _, b := range s.Bises {
		n += int(b.NumBis)
	}

	return n
}

type BroadcastQosConfig struct {
	Rtn                   uint8
	MaxTransportLatencyMs uint16
}

type DataPathConfig struct {
	IsoDataPathId     uint8
	CodecId           CodecId
	ControllerDelayUs uint32
	CodecConfig       []byte
}

// Codec and isochronous stream layout of a broadcast source.
type BroadcastConfiguration struct {
	Subgroups     []BroadcastSubgroupCodecConfig
	Qos           BroadcastQosConfig
	DataPath      DataPathConfig
	SduIntervalUs uint32
	MaxSduOctets  uint16
	Packing       uint8
	Framing       uint8
}

func (c *BroadcastConfiguration) NumBises() int {
	n := 0
	for i := range c.Subgroups {
		n += c.Subgroups[i].NumBises()
	}

	return n
}

type BasicAudioAnnouncementCodecConfig struct {
	CodecId                   CodecId
	CodecSpecificParams       LTV
	VendorCodecSpecificParams []byte
}

type BasicAudioAnnouncementBisConfig struct {
	BisIndex            uint8
	CodecSpecificParams LTV
}

type BasicAudioAnnouncementSubgroup struct {
	CodecConfig BasicAudioAnnouncementCodecConfig
	Metadata    LTV
	BisConfigs  []BasicAudioAnnouncementBisConfig
}

// Contents of the BASE carried in the periodic advertising train.
type BasicAudioAnnouncementData struct {
	PresentationDelayUs uint32
	Subgroups           []BasicAudioAnnouncementSubgroup
}

func (d BasicAudioAnnouncementData) Clone() BasicAudioAnnouncementData {
	c := BasicAudioAnnouncementData{
		PresentationDelayUs: d.PresentationDelayUs,
	}

	for _, sg := range d.Subgroups {
		sc := BasicAudioAnnouncementSubgroup{
			CodecConfig: BasicAudioAnnouncementCodecConfig{
				CodecId:             sg.CodecConfig.CodecId,
				CodecSpecificParams: sg.CodecConfig.CodecSpecificParams.Clone(),
			},
			Metadata: sg.Metadata.Clone(),
		}
		if sg.CodecConfig.VendorCodecSpecificParams != nil {
			sc.CodecConfig.VendorCodecSpecificParams = append([]byte{},
				sg.CodecConfig.VendorCodecSpecificParams...)
		}
		for _, bis := range sg.BisConfigs {
			sc.BisConfigs = append(sc.BisConfigs, BasicAudioAnnouncementBisConfig{
				BisIndex:            bis.BisIndex,
				CodecSpecificParams: bis.CodecSpecificParams.Clone(),
			})
		}
		c.Subgroups = append(c.Subgroups, sc)
	}

	return c
}

// Public Broadcast Profile feature bits.
const (
	PBP_FEATURE_ENCRYPTED        uint8 = 0x01
	PBP_FEATURE_STANDARD_QUALITY uint8 = 0x02
	PBP_FEATURE_HIGH_QUALITY     uint8 = 0x04
)

type PublicBroadcastAnnouncementData struct {
	Features uint8
	Metadata LTV
}

func (d PublicBroadcastAnnouncementData) Clone() PublicBroadcastAnnouncementData {
	return PublicBroadcastAnnouncementData{
		Features: d.Features,
		Metadata: d.Metadata.Clone(),
	}
}
