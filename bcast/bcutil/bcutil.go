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

package bcutil

import (
	log "github.com/sirupsen/logrus"
)

// Sets the level used by the broadcast library's logger.
func SetLogLevel(level log.Level) {
	log.SetLevel(level)
}

// Returns a copy of the given byte slice; nil in, nil out.
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}

	c := make([]byte, len(b))
	copy(c, b)
	return c
}

func CopyHandles(h []uint16) []uint16 {
	if h == nil {
		return nil
	}

	c := make([]uint16, len(h))
	copy(c, h)
	return c
}
