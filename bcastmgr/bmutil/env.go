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
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Defaults for the global flags, read from the environment.
type Env struct {
	Profile  string  `env:"BCASTMGR_PROFILE"`
	LogLevel string  `env:"BCASTMGR_LOGLEVEL" envDefault:"info"`
	Timeout  float64 `env:"BCASTMGR_TIMEOUT" envDefault:"5"`

	// Overrides the profile file location.
	CfgFile string `env:"BCASTMGR_CONFIG"`
}

var Environ Env

func parseEnv(opts env.Options) (Env, error) {
	var e Env
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return e, errors.Wrap(err, "invalid environment")
	}

	if e.Timeout <= 0 {
		return e, errors.Errorf("invalid environment: BCASTMGR_TIMEOUT=%g",
			e.Timeout)
	}

	return e, nil
}

// Reads the process environment into Environ.
func LoadEnv() error {
	e, err := parseEnv(env.Options{})
	if err != nil {
		return err
	}

	Environ = e
	return nil
}

// Parses the given variables instead of the process environment.
func EnvFrom(vars map[string]string) (Env, error) {
	return parseEnv(env.Options{Environment: vars})
}
