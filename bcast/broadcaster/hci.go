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
	"encoding/binary"

	"mynewt.apache.org/leabcast/bcast/bcutil"
)

// LE meta subevent codes delivered through HandleHciEvent.  Event payloads
// exclude the subevent code byte.
const (
	HCI_EVT_LE_CREATE_BIG_COMPLETE    uint8 = 0x1B
	HCI_EVT_LE_TERMINATE_BIG_COMPLETE uint8 = 0x1C
)

const (
	CREATE_BIG_COMPLETE_FIXED_LEN = 18
	TERMINATE_BIG_COMPLETE_LEN    = 2
)

type CreateBigCompleteEvt struct {
	Status              uint8
	BigHandle           uint8
	BigSyncDelay        uint32
	TransportLatencyBig uint32
	Phy                 uint8
	Nse                 uint8
	Bn                  uint8
	Pto                 uint8
	Irc                 uint8
	MaxPdu              uint16
	IsoInterval         uint16
	ConnHandles         []uint16
}

type TerminateBigCompleteEvt struct {
	BigHandle uint8
	Reason    uint8
}

func getUint24(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
}

// Parses an LE Create BIG Complete payload.  On a non-success status the
// controller may omit the trailing fields; only the status and BIG handle are
// required in that case.
func ParseCreateBigCompleteEvt(b []byte) (*CreateBigCompleteEvt, error) {
	if len(b) < 2 {
		return nil, bcutil.FmtParseError(
			"create BIG complete too short: len=%d", len(b))
	}

	e := &CreateBigCompleteEvt{
		Status:    b[0],
		BigHandle: b[1],
	}
	if e.Status != 0 && len(b) < CREATE_BIG_COMPLETE_FIXED_LEN {
		return e, nil
	}

	if len(b) < CREATE_BIG_COMPLETE_FIXED_LEN {
		return nil, bcutil.FmtParseError(
			"create BIG complete too short: len=%d min=%d",
			len(b), CREATE_BIG_COMPLETE_FIXED_LEN)
	}

	e.BigSyncDelay = getUint24(b[2:5])
	e.TransportLatencyBig = getUint24(b[5:8])
	e.Phy = b[8]
	e.Nse = b[9]
	e.Bn = b[10]
	e.Pto = b[11]
	e.Irc = b[12]
	e.MaxPdu = binary.LittleEndian.Uint16(b[13:15])
	e.IsoInterval = binary.LittleEndian.Uint16(b[15:17])

	numBis := int(b[17])
	if len(b) < CREATE_BIG_COMPLETE_FIXED_LEN+2*numBis {
		return nil, bcutil.FmtParseError(
			"create BIG complete truncated: num_bis=%d len=%d",
			numBis, len(b))
	}

	e.ConnHandles = make([]uint16, numBis)
	for i := 0; i < numBis; i++ {
		off := CREATE_BIG_COMPLETE_FIXED_LEN + 2*i
		e.ConnHandles[i] = binary.LittleEndian.Uint16(b[off : off+2])
	}

	return e, nil
}

func (e *CreateBigCompleteEvt) Bytes() []byte {
	b := make([]byte, CREATE_BIG_COMPLETE_FIXED_LEN+2*len(e.ConnHandles))

	b[0] = e.Status
	b[1] = e.BigHandle
	putUint24(b[2:5], e.BigSyncDelay)
	putUint24(b[5:8], e.TransportLatencyBig)
	b[8] = e.Phy
	b[9] = e.Nse
	b[10] = e.Bn
	b[11] = e.Pto
	b[12] = e.Irc
	binary.LittleEndian.PutUint16(b[13:15], e.MaxPdu)
	binary.LittleEndian.PutUint16(b[15:17], e.IsoInterval)
	b[17] = uint8(len(e.ConnHandles))
	for i, h := range e.ConnHandles {
		off := CREATE_BIG_COMPLETE_FIXED_LEN + 2*i
		binary.LittleEndian.PutUint16(b[off:off+2], h)
	}

	return b
}

func ParseTerminateBigCompleteEvt(b []byte) (*TerminateBigCompleteEvt, error) {
	if len(b) < TERMINATE_BIG_COMPLETE_LEN {
		return nil, bcutil.FmtParseError(
			"terminate BIG complete too short: len=%d", len(b))
	}

	return &TerminateBigCompleteEvt{
		BigHandle: b[0],
		Reason:    b[1],
	}, nil
}

func (e *TerminateBigCompleteEvt) Bytes() []byte {
	return []byte{e.BigHandle, e.Reason}
}
