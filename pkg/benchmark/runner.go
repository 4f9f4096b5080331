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
	"io/ioutil"
	"strings"
	"time"

	"github.com/harsha-simhadri/sbsched/pkg/conf"
	"github.com/harsha-simhadri/sbsched/pkg/executor"
	"github.com/harsha-simhadri/sbsched/pkg/results"
	"github.com/harsha-simhadri/sbsched/pkg/utils/errutil"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config configures the Runner.
type Config struct {
	AbortOnRunFailure bool `help:"Abort on the first run with malformed output or timeout instead of skipping it."`
	KeepOutput        bool `help:"Keep stdout and stderr files of every run."`

	// Observer is notified about every run. May be nil.
	Observer Observer
}

var defaultConfig = Config{}

func init() {
	errutil.Check(conf.Process(&defaultConfig))
}

// DefaultConfig returns Config filled from abort_on_run_failure and keep_output flags.
// Both are false unless set.
func DefaultConfig() Config {
	errutil.Check(conf.Process(&defaultConfig))
	return defaultConfig
}

// Runner executes benchmark runs one after another. Runs never overlap:
// the measured cache misses are only meaningful without contending processes.
type Runner struct {
	executor executor.Executor
	config   Config
	now      func() time.Time
}

// New returns Runner which spawns runs with given executor.
func New(executor executor.Executor, config Config) Runner {
	if config.Observer == nil {
		config.Observer = Observers{}
	}
	return Runner{
		executor: executor,
		config:   config,
		now:      time.Now,
	}
}

// RunOnce spawns the command, waits for it at most timeout (zero means
// forever) and returns its standard output and exit code.
// Timed out process is stopped and ErrRunTimeout returned.
func (r Runner) RunOnce(argv []string, timeout time.Duration) (stdout string, exitCode int, err error) {
	task, err := r.executor.Execute(argv)
	if err != nil {
		return "", -1, errors.Wrapf(ErrProcessSpawnFailure, "%v", err)
	}
	defer r.cleanup(task)

	if !task.Wait(timeout) {
		if stopErr := task.Stop(); stopErr != nil {
			logrus.Warnf("Cannot stop timed out run of %q: %v", strings.Join(argv, " "), stopErr)
		}
		return "", -1, errors.Wrapf(ErrRunTimeout, "run did not finish within %s", timeout)
	}

	exitCode, err = task.ExitCode()
	if err != nil {
		return "", -1, errors.Wrap(err, "cannot get exit code")
	}
	if exitCode != 0 {
		executor.LogUnsuccessfulExecution(strings.Join(argv, " "), task, exitCode)
	}

	file, err := task.StdoutFile()
	if err != nil {
		return "", exitCode, errors.Wrap(err, "cannot open stdout")
	}
	defer file.Close()

	output, err := ioutil.ReadAll(file)
	if err != nil {
		return "", exitCode, errors.Wrapf(err, "cannot read stdout from %q", file.Name())
	}

	return string(output), exitCode, nil
}

func (r Runner) cleanup(task executor.TaskHandle) {
	if err := task.Clean(); err != nil {
		logrus.Warnf("Cannot clean task: %v", err)
	}
	if r.config.KeepOutput {
		return
	}
	if err := task.EraseOutput(); err != nil {
		logrus.Warnf("Cannot erase task output: %v", err)
	}
}

// runAndParse performs run with given index and turns it into RunResult.
func (r Runner) runAndParse(index int, argv []string, timeout time.Duration) RunResult {
	result := RunResult{Index: index, ExitCode: -1}

	stdout, exitCode, err := r.RunOnce(argv, timeout)
	result.ExitCode = exitCode
	if err != nil {
		result.Err = err
		return result
	}

	partial, err := ParseMetrics(strings.NewReader(stdout))
	if err != nil {
		result.Err = err
		return result
	}

	result.Sample, result.Err = partial.Complete()
	return result
}

// RunBenchmark runs the program config.Runs times and aggregates samples
// of successful runs into results file content.
// Spawn failures always abort. Malformed output and timeouts skip the run
// unless AbortOnRunFailure is set. Fewer than MinSamples successful runs
// is ErrInsufficientSamples.
func (r Runner) RunBenchmark(config RunConfiguration) (results.File, error) {
	if config.Runs < MinSamples {
		return results.File{}, errors.Wrapf(ErrInvalidConfiguration, "run count %d is less than %d required for trimming", config.Runs, MinSamples)
	}

	start := r.now()
	argv := BuildCommand(config)

	runs := make([]RunResult, 0, config.Runs)
	for index := 0; index < config.Runs; index++ {
		r.config.Observer.RunStarted(index, argv)
		result := r.runAndParse(index, argv, config.Timeout)
		r.config.Observer.RunFinished(result)

		if result.Err != nil && (!IsRecoverable(result.Err) || r.config.AbortOnRunFailure) {
			return results.File{}, errors.Wrapf(result.Err, "run %d of %d failed", index+1, config.Runs)
		}
		runs = append(runs, result)
	}

	activeTimes, l3Misses, skipped := project(runs)

	avgActiveTime, err := TrimmedMean(activeTimes)
	if err != nil {
		return results.File{}, errors.Wrapf(err, "%d of %d runs were skipped", skipped, config.Runs)
	}
	avgL3Misses, err := TrimmedMeanMillions(l3Misses)
	if err != nil {
		return results.File{}, errors.Wrapf(err, "%d of %d runs were skipped", skipped, config.Runs)
	}

	return results.File{
		Header: results.Header{
			Host:      config.Host,
			Program:   config.Program,
			Args:      append([]string{}, config.Args...),
			Runs:      config.Runs,
			Policy:    config.Policy.Name,
			Timestamp: start,
			Skipped:   skipped,
		},
		ActiveTimes:         activeTimes,
		L3Misses:            l3Misses,
		AvgActiveTime:       avgActiveTime,
		AvgL3MissesMillions: avgL3Misses,
	}, nil
}
