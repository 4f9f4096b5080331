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

// RunResult is the outcome of one run: either a sample or the reason the run
// was rejected.
type RunResult struct {
	// Index is run number counted from 0.
	Index int
	// ExitCode of the program, -1 when it is unknown. It is informative only.
	ExitCode int
	Sample   Sample
	Err      error
}

// Succeeded tells whether the run produced a sample.
func (r RunResult) Succeeded() bool {
	return r.Err == nil
}

// project splits successful runs into aligned per metric sequences.
func project(runs []RunResult) (activeTimes, l3Misses []int64, skipped int) {
	for _, run := range runs {
		if !run.Succeeded() {
			skipped++
			continue
		}
		activeTimes = append(activeTimes, run.Sample.ActiveTimeMs)
		l3Misses = append(l3Misses, run.Sample.L3Misses)
	}
	return activeTimes, l3Misses, skipped
}

// Observer is notified about progress of a benchmark.
type Observer interface {
	// RunStarted is called before run with given index is spawned.
	RunStarted(index int, argv []string)
	// RunFinished is called with outcome of every run, successful or not.
	RunFinished(result RunResult)
}

// Observers fans notifications out to every observer in order.
type Observers []Observer

// RunStarted implements Observer interface.
func (o Observers) RunStarted(index int, argv []string) {
	for _, observer := range o {
		observer.RunStarted(index, argv)
	}
}

// RunFinished implements Observer interface.
func (o Observers) RunFinished(result RunResult) {
	for _, observer := range o {
		observer.RunFinished(result)
	}
}
