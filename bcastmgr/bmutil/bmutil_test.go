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

package bmutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvDefaults(t *testing.T) {
	e, err := EnvFrom(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "", e.Profile)
	assert.Equal(t, "info", e.LogLevel)
	assert.Equal(t, 5.0, e.Timeout)
	assert.Equal(t, "", e.CfgFile)
}

func TestEnvValues(t *testing.T) {
	e, err := EnvFrom(map[string]string{
		"BCASTMGR_PROFILE":  "stage",
		"BCASTMGR_LOGLEVEL": "debug",
		"BCASTMGR_TIMEOUT":  "0.5",
		"BCASTMGR_CONFIG":   "/tmp/bcast.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, "stage", e.Profile)
	assert.Equal(t, "debug", e.LogLevel)
	assert.Equal(t, 0.5, e.Timeout)
	assert.Equal(t, "/tmp/bcast.yaml", e.CfgFile)
}

func TestEnvInvalidTimeout(t *testing.T) {
	_, err := EnvFrom(map[string]string{"BCASTMGR_TIMEOUT": "soon"})
	assert.Error(t, err)

	_, err = EnvFrom(map[string]string{"BCASTMGR_TIMEOUT": "-1"})
	assert.Error(t, err)
}

func TestTimeoutDuration(t *testing.T) {
	old := Timeout
	defer func() { Timeout = old }()

	Timeout = 1.5
	assert.Equal(t, 1500*time.Millisecond, TimeoutDuration())
}

func TestErrorCausedBy(t *testing.T) {
	cause := fmt.Errorf("root")
	wrapped := errors.Wrap(errors.Wrap(cause, "inner"), "outer")

	assert.True(t, ErrorCausedBy(wrapped, cause))
	assert.True(t, ErrorCausedBy(cause, cause))
	assert.False(t, ErrorCausedBy(wrapped, fmt.Errorf("root")))
}
