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
	"fmt"

	"mynewt.apache.org/leabcast/bcast/bcdefs"
)

// Represents a non-success status reported by the controller or by the
// advertising manager.
type HostError struct {
	Text   string
	Status uint8
}

func NewHostError(status uint8, text string) *HostError {
	return &HostError{
		Status: status,
		Text:   text,
	}
}

func FmtHostError(status uint8, format string,
	args ...interface{}) *HostError {

	return NewHostError(status, fmt.Sprintf(format, args...))
}

func (e *HostError) Error() string {
	return fmt.Sprintf("%s; status=%s (0x%02x)",
		e.Text, bcdefs.HciStatusToString(e.Status), e.Status)
}

func IsHost(err error) bool {
	_, ok := err.(*HostError)
	return ok
}

func ToHost(err error) *HostError {
	if herr, ok := err.(*HostError); ok {
		return herr
	} else {
		return nil
	}
}

// Indicates an attempt to register something that is already registered
// (e.g., a second broadcast source with the same broadcast ID).
type AlreadyError struct {
	Text string
}

func NewAlreadyError(text string) *AlreadyError {
	return &AlreadyError{text}
}

func (err *AlreadyError) Error() string {
	return err.Text
}

func IsAlready(err error) bool {
	if err == nil {
		return false
	}

	_, ok := err.(*AlreadyError)
	return ok
}

// Indicates that a limited resource (e.g., BIG handles) is exhausted.
type ResourceError struct {
	Text string
}

func NewResourceError(text string) *ResourceError {
	return &ResourceError{text}
}

func (err *ResourceError) Error() string {
	return err.Text
}

func IsResource(err error) bool {
	if err == nil {
		return false
	}

	_, ok := err.(*ResourceError)
	return ok
}

// Indicates a malformed controller payload.
type ParseError struct {
	Text string
}

func NewParseError(text string) *ParseError {
	return &ParseError{text}
}

func FmtParseError(format string, args ...interface{}) *ParseError {
	return NewParseError(fmt.Sprintf(format, args...))
}

func (err *ParseError) Error() string {
	return err.Text
}

func IsParse(err error) bool {
	if err == nil {
		return false
	}

	_, ok := err.(*ParseError)
	return ok
}
