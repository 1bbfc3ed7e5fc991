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

package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundedInitialState(t *testing.T) {
	b := NewBounded(7)
	assert.Equal(t, uint8(0), b.State())
	assert.Equal(t, uint16(7), b.Count())
}

func TestBoundedRejectsOutOfRange(t *testing.T) {
	b := NewBounded(7)

	for s := 0; s < 7; s++ {
		b.SetState(uint8(s))
		assert.Equal(t, uint8(s), b.State())

		for bad := 7; bad <= 0xff; bad++ {
			b.SetState(uint8(bad))
			assert.Equal(t, uint8(s), b.State(), "bad state %d", bad)
		}
	}
}

func TestBoundedFullRange(t *testing.T) {
	b := NewBounded(256)
	b.SetState(0xff)
	assert.Equal(t, uint8(0xff), b.State())
}
