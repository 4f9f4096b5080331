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

import "github.com/pkg/errors"

// Failure classes of a benchmark. Returned errors wrap one of them with
// context; match with errors.Cause.
var (
	// ErrInvalidConfiguration means run count or program is missing or wrong.
	// Nothing was spawned and no results file was written.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrProcessSpawnFailure means the benchmarked program (or its wrappers) could not be started.
	ErrProcessSpawnFailure = errors.New("process spawn failure")
	// ErrMalformedOutput means a run did not print exactly one line of each metric.
	ErrMalformedOutput = errors.New("malformed output")
	// ErrInsufficientSamples means fewer than MinSamples samples were left for averaging.
	ErrInsufficientSamples = errors.New("insufficient samples")
	// ErrRunTimeout means a run did not finish within the configured timeout.
	ErrRunTimeout = errors.New("run timeout")
)

// IsRecoverable tells whether the run can be skipped and benchmark continued.
func IsRecoverable(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrMalformedOutput || cause == ErrRunTimeout
}
