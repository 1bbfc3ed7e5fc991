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

// Package fsm provides a minimal finite-state holder.
package fsm

// Bounded holds a state ordinal in the range [0, count).  Assignments outside
// that range are ignored; they never alter the current state.
type Bounded struct {
	count uint16
	state uint8
}

// NewBounded creates a holder for count states.  The initial state is 0.
func NewBounded(count uint16) Bounded {
	return Bounded{
		count: count,
	}
}

func (b *Bounded) State() uint8 {
	return b.state
}

func (b *Bounded) Count() uint16 {
	return b.count
}

func (b *Bounded) SetState(state uint8) {
	if uint16(state) < b.count {
		b.state = state
	}
}
