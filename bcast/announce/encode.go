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

	"mynewt.apache.org/leabcast/bcast/bcdefs"
)

func appendLenPrefixed(b []byte, what string, v []byte) ([]byte, error) {
	if len(v) > 0xff {
		return b, errors.Errorf("%s too long: %d bytes", what, len(v))
	}

	b = append(b, byte(len(v)))
	return append(b, v...), nil
}

func codecConfigBytes(cc *BasicAudioAnnouncementCodecConfig) []byte {
	if cc.CodecId.CodingFormat == CODING_FORMAT_VENDOR &&
		cc.VendorCodecSpecificParams != nil {

		return cc.VendorCodecSpecificParams
	}

	return cc.CodecSpecificParams.Bytes()
}

// EncodeBase serializes a Basic Audio Source Endpoint structure.
func EncodeBase(d BasicAudioAnnouncementData) ([]byte, error) {
	if d.PresentationDelayUs > 0xffffff {
		return nil, errors.Errorf("presentation delay out of range: %d",
			d.PresentationDelayUs)
	}
	if len(d.Subgroups) == 0 || len(d.Subgroups) > 0xff {
		return nil, errors.Errorf("invalid subgroup count: %d",
			len(d.Subgroups))
	}

	b := []byte{
		byte(d.PresentationDelayUs),
		byte(d.PresentationDelayUs >> 8),
		byte(d.PresentationDelayUs >> 16),
		byte(len(d.Subgroups)),
	}

	var err error
	for i, sg := range d.Subgroups {
		if len(sg.BisConfigs) == 0 || len(sg.BisConfigs) > 0xff {
			return nil, errors.Errorf("subgroup %d: invalid BIS count: %d",
				i, len(sg.BisConfigs))
		}

		b = append(b, byte(len(sg.BisConfigs)))
		b = append(b, sg.CodecConfig.CodecId.Bytes()...)

		b, err = appendLenPrefixed(b, "codec configuration",
			codecConfigBytes(&sg.CodecConfig))
		if err != nil {
			return nil, errors.Wrapf(err, "subgroup %d", i)
		}

		b, err = appendLenPrefixed(b, "metadata", sg.Metadata.Bytes())
		if err != nil {
			return nil, errors.Wrapf(err, "subgroup %d", i)
		}

		for _, bis := range sg.BisConfigs {
			b = append(b, bis.BisIndex)
			b, err = appendLenPrefixed(b, "BIS codec configuration",
				bis.CodecSpecificParams.Bytes())
			if err != nil {
				return nil, errors.Wrapf(err, "subgroup %d bis %d",
					i, bis.BisIndex)
			}
		}
	}

	return b, nil
}

// PeriodicAdvertisingData builds the periodic advertising payload carrying
// the Basic Audio Announcement.
func PeriodicAdvertisingData(d BasicAudioAnnouncementData) ([]byte, error) {
	base, err := EncodeBase(d)
	if err != nil {
		return nil, err
	}

	p, err := Packet(nil).AppendServiceData16(
		bcdefs.UUID_BASIC_AUDIO_ANNOUNCEMENT, base)
	if err != nil {
		return nil, errors.Wrap(err, "basic audio announcement")
	}

	return p.Bytes(), nil
}

// AdvertisingData builds the extended advertising payload: the Broadcast
// Audio Announcement, then (for public broadcasts) the Public Broadcast
// Announcement, then the broadcast name if one is set.
func AdvertisingData(id BroadcastId, isPublic bool, name string,
	pub PublicBroadcastAnnouncementData, encrypted bool) ([]byte, error) {

	if !id.Valid() {
		return nil, errors.Errorf("invalid broadcast ID: %s", id.String())
	}

	p, err := Packet(nil).AppendServiceData16(
		bcdefs.UUID_BROADCAST_AUDIO_ANNOUNCEMENT,
		[]byte{byte(id), byte(id >> 8), byte(id >> 16)})
	if err != nil {
		return nil, err
	}

	if isPublic {
		features := pub.Features &^ PBP_FEATURE_ENCRYPTED
		if encrypted {
			features |= PBP_FEATURE_ENCRYPTED
		}

		d := []byte{features}
		d, err = appendLenPrefixed(d, "public announcement metadata",
			pub.Metadata.Bytes())
		if err != nil {
			return nil, err
		}

		p, err = p.AppendServiceData16(
			bcdefs.UUID_PUBLIC_BROADCAST_ANNOUNCEMENT, d)
		if err != nil {
			return nil, errors.Wrap(err, "public broadcast announcement")
		}
	}

	if name != "" {
		p, err = p.AppendField(bcdefs.AD_TYPE_BROADCAST_NAME, []byte(name))
		if err != nil {
			return nil, errors.Wrap(err, "broadcast name")
		}
	}

	return p.Bytes(), nil
}
