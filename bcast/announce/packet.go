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

// Packet is a sequence of AD structures (length, type, data).
type Packet []byte

// AppendField appends an AD structure to the packet.
func (p Packet) AppendField(typ byte, b []byte) (Packet, error) {
	if len(b) > bcdefs.AD_FIELD_MAX_LEN {
		return p, errors.Errorf(
			"AD field too long: type=0x%02x len=%d max=%d",
			typ, len(b), bcdefs.AD_FIELD_MAX_LEN)
	}

	p = append(p, byte(len(b)+1))
	p = append(p, typ)
	return append(p, b...), nil
}

// AppendServiceData16 appends a 16-bit UUID service data field.
func (p Packet) AppendServiceData16(uuid uint16, b []byte) (Packet, error) {
	d := append([]byte{uint8(uuid), uint8(uuid >> 8)}, b...)
	return p.AppendField(bcdefs.AD_TYPE_SERVICE_DATA16, d)
}

// Calls fn with the type and data of each well-formed AD structure until fn
// returns false.  Parsing stops at a zero length or a truncated structure.
func (p Packet) walk(fn func(typ byte, data []byte) bool) {
	b := p
	for len(b) >= 2 {
		l := b[0]
		if l == 0 {
			return
		}
		n := int(l) + 1
		if len(b) < n {
			return
		}
		if !fn(b[1], b[2:n]) {
			return
		}
		b = b[n:]
	}
}

// Field returns the data of the first field of the given type (excluding the
// length and type bytes), or nil.
func (p Packet) Field(typ byte) []byte {
	var found []byte
	p.walk(func(t byte, data []byte) bool {
		if t == typ {
			found = data
			return false
		}
		return true
	})
	return found
}

// ServiceData16 returns the payload following the given 16-bit UUID in the
// first matching service data field, or nil.
func (p Packet) ServiceData16(uuid uint16) []byte {
	var found []byte
	p.walk(func(t byte, data []byte) bool {
		if t == bcdefs.AD_TYPE_SERVICE_DATA16 && len(data) >= 2 &&
			uint16(data[0])|uint16(data[1])<<8 == uuid {

			found = data[2:]
			return false
		}
		return true
	})
	return found
}

func (p Packet) Bytes() []byte {
	return []byte(p)
}
