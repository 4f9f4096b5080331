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
	"bufio"
	"io"
	"strings"

	"github.com/harsha-simhadri/sbsched/pkg/utils/fs"
	"github.com/sirupsen/logrus"
)

// StderrTailLines is number of stderr lines logged for a failed task.
const StderrTailLines = 3

// LogUnsuccessfulExecution logs where stderr of a failed task is stored and
// its last lines. Exit code is taken from the caller since the task may be
// already cleaned.
func LogUnsuccessfulExecution(command string, handle TaskHandle, exitCode int) {
	entry := logrus.WithFields(logrus.Fields{"command": command, "exit_code": exitCode})

	stderrFile, err := handle.StderrFile()
	if err != nil {
		entry.Warnf("Could not open stderr: %v", err)
		return
	}
	defer stderrFile.Close()

	tail, err := fs.ReadTail(stderrFile.Name(), StderrTailLines)
	if err != nil {
		entry.Warnf("Could not read stderr: %v", err)
		return
	}

	entry.Warnf("Command might have ended prematurely, stderr stored in %q", stderrFile.Name())
	WarnLogLines(strings.NewReader(tail), entry)
}

// WarnLogLines prints each line from reader in a separate warning,
// logrus does not support multi-line logs.
func WarnLogLines(r io.Reader, entry *logrus.Entry) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		entry.Warn(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		entry.Warnf("Printing from reader failed: %v", err)
	}
}
