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

package executor

import (
	"os"
	"time"
)

// TaskHandle represents a process which can be stopped or monitored.
type TaskHandle interface {
	// Stop terminates a task.
	Stop() error
	// ExitCode returns a exitCode. If task is not terminated it returns error.
	// Process killed by a signal has negative signal number as exit code.
	ExitCode() (int, error)
	// StdoutFile returns a new read-only file handle to the task's stdout file.
	// Caller is responsible for closing it.
	StdoutFile() (*os.File, error)
	// StderrFile returns a new read-only file handle to the task's stderr file.
	// Caller is responsible for closing it.
	StderrFile() (*os.File, error)
	// Wait does the blocking wait for the task completion. Zero timeout means no timeout.
	// It returns true if task is terminated.
	Wait(timeout time.Duration) bool
	// Clean closes the task's stdout & stderr files.
	Clean() error
	// EraseOutput removes task's stdout & stderr files.
	EraseOutput() error
}
