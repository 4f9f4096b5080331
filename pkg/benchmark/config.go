// Copyright (c) 2017 Intel Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package benchmark

import (
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/harsha-simhadri/sbsched/pkg/isolation"
	"github.com/pkg/errors"
)

// RunConfiguration describes one benchmark. It is created once by
// NewRunConfiguration and must not be modified afterwards.
type RunConfiguration struct {
	// Host is short host name (up to the first dot).
	Host string
	// Program is program name as given by the user, used in results file name.
	Program string
	// ProgramPath is Program resolved against the test directory.
	ProgramPath string
	// Args are passed verbatim to the program.
	Args []string
	// Runs is number of repetitions, at least MinSamples.
	Runs int
	// Policy is resource binding every run is wrapped with.
	Policy isolation.Policy
	// Timeout bounds a single run. Zero means no timeout.
	Timeout time.Duration
}

// NewRunConfiguration validates user input and builds the configuration.
// Run count is taken as text so that non numeric input is reported as invalid configuration.
func NewRunConfiguration(host, testDir, program, runs string, args []string, policy isolation.Policy, timeout time.Duration) (RunConfiguration, error) {
	if strings.TrimSpace(runs) == "" {
		return RunConfiguration{}, errors.Wrap(ErrInvalidConfiguration, "run count is missing")
	}
	runCount, err := strconv.Atoi(strings.TrimSpace(runs))
	if err != nil {
		return RunConfiguration{}, errors.Wrapf(ErrInvalidConfiguration, "run count %q is not a number", runs)
	}
	if runCount < MinSamples {
		return RunConfiguration{}, errors.Wrapf(ErrInvalidConfiguration, "run count %d is less than %d required for trimming", runCount, MinSamples)
	}
	if program == "" {
		return RunConfiguration{}, errors.Wrap(ErrInvalidConfiguration, "program is missing")
	}
	if timeout < 0 {
		return RunConfiguration{}, errors.Wrapf(ErrInvalidConfiguration, "negative run timeout %s", timeout)
	}
	if err := policy.Validate(); err != nil {
		return RunConfiguration{}, errors.Wrapf(ErrInvalidConfiguration, "%v", err)
	}

	programPath := filepath.Join(testDir, program)
	if !strings.ContainsRune(programPath, filepath.Separator) {
		// Keep exec from searching PATH for a bare name.
		programPath = "." + string(filepath.Separator) + programPath
	}

	return RunConfiguration{
		Host:        ShortHostname(host),
		Program:     program,
		ProgramPath: programPath,
		Args:        append([]string{}, args...),
		Runs:        runCount,
		Policy:      policy,
		Timeout:     timeout,
	}, nil
}

// ShortHostname strips domain part from host name.
func ShortHostname(hostname string) string {
	if i := strings.Index(hostname, "."); i >= 0 {
		return hostname[:i]
	}
	return hostname
}

// CheckSpawnable makes sure the program and wrappers from the policy can be executed.
func CheckSpawnable(config RunConfiguration) error {
	binaries := append(config.Policy.Binaries(), config.ProgramPath)
	for _, binary := range binaries {
		if _, err := exec.LookPath(binary); err != nil {
			return errors.Wrapf(ErrProcessSpawnFailure, "cannot execute %q: %v", binary, err)
		}
	}
	return nil
}
