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

package experiment

import (
	"fmt"
	"io"
	"strings"

	"github.com/harsha-simhadri/sbsched/pkg/benchmark"
	"github.com/sirupsen/logrus"
	"gopkg.in/cheggaaa/pb.v1"
)

// LoggingObserver reports every run through logrus.
type LoggingObserver struct {
	entry *logrus.Entry
}

// NewLoggingObserver returns observer logging with given experiment ID field.
func NewLoggingObserver(experimentID string) LoggingObserver {
	return LoggingObserver{entry: logrus.WithField("experiment", experimentID)}
}

// RunStarted implements benchmark.Observer interface.
func (o LoggingObserver) RunStarted(index int, argv []string) {
	o.entry.WithField("run", index).Debugf("Starting %q", strings.Join(argv, " "))
}

// RunFinished implements benchmark.Observer interface.
func (o LoggingObserver) RunFinished(result benchmark.RunResult) {
	entry := o.entry.WithFields(logrus.Fields{
		"run":       result.Index,
		"exit_code": result.ExitCode,
	})

	if !result.Succeeded() {
		if benchmark.IsRecoverable(result.Err) {
			entry.WithError(result.Err).Warn("Run skipped")
		} else {
			entry.WithError(result.Err).Error("Run failed")
		}
		return
	}
	if result.ExitCode != 0 {
		entry.Warn("Run exited with non zero code, its metrics are still used")
	}
	entry.Infof("Active time %d ms, %d L3 misses", result.Sample.ActiveTimeMs, result.Sample.L3Misses)
}

// ProgressObserver draws progress bar of the benchmark.
type ProgressObserver struct {
	bar     *pb.ProgressBar
	total   int
	skipped int
}

// NewProgressObserver starts progress bar for given number of runs.
func NewProgressObserver(total int, output io.Writer) *ProgressObserver {
	bar := pb.New(total)
	bar.Output = output
	bar.ShowCounters = true
	bar.ShowTimeLeft = true
	bar.Start()

	return &ProgressObserver{bar: bar, total: total}
}

// RunStarted implements benchmark.Observer interface.
func (o *ProgressObserver) RunStarted(index int, argv []string) {
	o.bar.Prefix(fmt.Sprintf("run %d/%d ", index+1, o.total))
}

// RunFinished implements benchmark.Observer interface.
func (o *ProgressObserver) RunFinished(result benchmark.RunResult) {
	if !result.Succeeded() {
		o.skipped++
		o.bar.Postfix(fmt.Sprintf(" skipped %d", o.skipped))
	}
	o.bar.Increment()
}

// Finish stops drawing the bar.
func (o *ProgressObserver) Finish() {
	o.bar.Finish()
}
