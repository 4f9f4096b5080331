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
	"os"
	"path"
	"testing"
	"time"

	"github.com/harsha-simhadri/sbsched/pkg/conf"
	"github.com/harsha-simhadri/sbsched/pkg/executor/mocks"
	"github.com/harsha-simhadri/sbsched/pkg/isolation"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"
)

type recordingObserver struct {
	started  []int
	finished []RunResult
}

func (o *recordingObserver) RunStarted(index int, argv []string) {
	o.started = append(o.started, index)
}

func (o *recordingObserver) RunFinished(result RunResult) {
	o.finished = append(o.finished, result)
}

// finishedTask returns task mock which terminated with given stdout.
func finishedTask(dir string, index int, stdout string) *mocks.TaskHandle {
	stdoutPath := path.Join(dir, "stdout"+string(rune('a'+index)))
	So(ioutil.WriteFile(stdoutPath, []byte(stdout), 0644), ShouldBeNil)

	task := new(mocks.TaskHandle)
	task.On("Wait", mock.AnythingOfType("time.Duration")).Return(true)
	task.On("ExitCode").Return(0, nil)
	task.On("StdoutFile").Return(func() *os.File {
		file, err := os.Open(stdoutPath)
		So(err, ShouldBeNil)
		return file
	}, nil)
	task.On("Clean").Return(nil)
	task.On("EraseOutput").Return(nil)
	return task
}

func TestDefaultConfig(t *testing.T) {
	Convey("Default config is filled from flags", t, func() {
		So(DefaultConfig().KeepOutput, ShouldBeFalse)

		So(conf.Parse([]string{"--keep_output", "--abort_on_run_failure"}), ShouldBeNil)
		defer conf.Parse([]string{})

		config := DefaultConfig()
		So(config.KeepOutput, ShouldBeTrue)
		So(config.AbortOnRunFailure, ShouldBeTrue)
		So(config.Observer, ShouldBeNil)
	})
}

func TestRunBenchmark(t *testing.T) {
	Convey("With five runs of sampleSort", t, func() {
		dir, err := ioutil.TempDir("", "runner")
		So(err, ShouldBeNil)
		defer os.RemoveAll(dir)

		config, err := NewRunConfiguration("ramsey", "test", "sampleSort", "5", []string{"100000000", "8"}, isolation.DefaultPolicy(), 0)
		So(err, ShouldBeNil)
		argv := BuildCommand(config)

		mExecutor := new(mocks.Executor)
		observer := &recordingObserver{}
		runner := New(mExecutor, Config{Observer: observer})
		startTime := time.Date(2016, 3, 7, 9, 5, 3, 0, time.Local)
		runner.now = func() time.Time { return startTime }

		outputs := []string{
			"T: 10\nL3_MISSES: 1000000\n",
			"T: 20\nL3_MISSES: 2000000\n",
			"T: 30\nL3_MISSES: 3000000\n",
			"T: 40\nL3_MISSES: 4000000\n",
			"T: 50\nL3_MISSES: 5000000\n",
		}

		Convey("When every run prints both metrics", func() {
			var tasks []*mocks.TaskHandle
			for i, output := range outputs {
				task := finishedTask(dir, i, output)
				tasks = append(tasks, task)
				mExecutor.On("Execute", argv).Return(task, nil).Once()
			}

			file, err := runner.RunBenchmark(config)

			Convey("Trimmed means are computed", func() {
				So(err, ShouldBeNil)
				So(file.ActiveTimes, ShouldResemble, []int64{10, 20, 30, 40, 50})
				So(file.L3Misses, ShouldResemble, []int64{1000000, 2000000, 3000000, 4000000, 5000000})
				So(file.AvgActiveTime, ShouldEqual, 30.0)
				So(file.AvgL3MissesMillions, ShouldEqual, 3.0)
			})

			Convey("Header describes the benchmark", func() {
				So(file.Host, ShouldEqual, "ramsey")
				So(file.Program, ShouldEqual, "sampleSort")
				So(file.Args, ShouldResemble, []string{"100000000", "8"})
				So(file.Runs, ShouldEqual, 5)
				So(file.Policy, ShouldEqual, "all")
				So(file.Timestamp, ShouldResemble, startTime)
				So(file.Skipped, ShouldEqual, 0)
				So(file.Name(), ShouldEqual, "sampleSort_runs_5_100000000_8_sock_all__2016.3.7.9.5.3")
			})

			Convey("Runs are executed sequentially and observed", func() {
				mExecutor.AssertNumberOfCalls(t, "Execute", 5)
				So(observer.started, ShouldResemble, []int{0, 1, 2, 3, 4})
				So(len(observer.finished), ShouldEqual, 5)
				for i, result := range observer.finished {
					So(result.Index, ShouldEqual, i)
					So(result.Succeeded(), ShouldBeTrue)
				}
			})

			Convey("Output of every run is erased", func() {
				for _, task := range tasks {
					task.AssertCalled(t, "Clean")
					task.AssertCalled(t, "EraseOutput")
				}
			})
		})

		Convey("When one run lacks active time line", func() {
			outputs[2] = "L3_MISSES: 3000000\n"
			outputs = append(outputs, "T: 60\nL3_MISSES: 6000000\n")
			config.Runs = 6
			for i, output := range outputs {
				mExecutor.On("Execute", argv).Return(finishedTask(dir, i, output), nil).Once()
			}

			file, err := runner.RunBenchmark(config)

			Convey("The run is excluded from both metrics", func() {
				So(err, ShouldBeNil)
				So(file.ActiveTimes, ShouldResemble, []int64{10, 20, 40, 50, 60})
				So(file.L3Misses, ShouldResemble, []int64{1000000, 2000000, 4000000, 5000000, 6000000})
				So(file.AvgActiveTime, ShouldEqual, 110.0/3.0)
				So(file.Skipped, ShouldEqual, 1)
				So(file.Runs, ShouldEqual, 6)
			})

			Convey("Observer gets the failure", func() {
				So(observer.finished[2].Succeeded(), ShouldBeFalse)
				So(errors.Cause(observer.finished[2].Err), ShouldEqual, ErrMalformedOutput)
			})
		})

		Convey("When malformed runs must abort the benchmark", func() {
			runner.config.AbortOnRunFailure = true
			mExecutor.On("Execute", argv).Return(finishedTask(dir, 0, outputs[0]), nil).Once()
			mExecutor.On("Execute", argv).Return(finishedTask(dir, 1, "garbage\n"), nil).Once()

			_, err := runner.RunBenchmark(config)

			So(errors.Cause(err), ShouldEqual, ErrMalformedOutput)
			mExecutor.AssertNumberOfCalls(t, "Execute", 2)
		})

		Convey("When too many runs are malformed", func() {
			for i := range outputs {
				output := "T: 1\n"
				if i < 2 {
					output = outputs[i]
				}
				mExecutor.On("Execute", argv).Return(finishedTask(dir, i, output), nil).Once()
			}

			_, err := runner.RunBenchmark(config)

			So(errors.Cause(err), ShouldEqual, ErrInsufficientSamples)
			So(err.Error(), ShouldContainSubstring, "3 of 5 runs were skipped")
		})

		Convey("When program cannot be spawned", func() {
			mExecutor.On("Execute", argv).Return(nil, errors.New("no such file")).Once()

			_, err := runner.RunBenchmark(config)

			So(errors.Cause(err), ShouldEqual, ErrProcessSpawnFailure)
			So(err.Error(), ShouldContainSubstring, "no such file")
			mExecutor.AssertNumberOfCalls(t, "Execute", 1)
		})

		Convey("When a run times out", func() {
			config.Timeout = time.Second
			hung := new(mocks.TaskHandle)
			hung.On("Wait", time.Second).Return(false)
			hung.On("Stop").Return(nil)
			hung.On("Clean").Return(nil)
			hung.On("EraseOutput").Return(nil)

			mExecutor.On("Execute", argv).Return(hung, nil).Once()
			for i := 1; i < len(outputs); i++ {
				mExecutor.On("Execute", argv).Return(finishedTask(dir, i, outputs[i]), nil).Once()
			}

			file, err := runner.RunBenchmark(config)

			Convey("It is stopped and skipped", func() {
				So(err, ShouldBeNil)
				hung.AssertCalled(t, "Stop")
				So(errors.Cause(observer.finished[0].Err), ShouldEqual, ErrRunTimeout)
				So(file.ActiveTimes, ShouldResemble, []int64{20, 30, 40, 50})
				So(file.AvgActiveTime, ShouldEqual, 35.0)
				So(file.Skipped, ShouldEqual, 1)
			})
		})

		Convey("When a run exits with non zero code", func() {
			stderrPath := path.Join(dir, "stderr")
			So(ioutil.WriteFile(stderrPath, []byte("warning: slow\n"), 0644), ShouldBeNil)

			failing := finishedTask(dir, 0, outputs[0])
			failing.ExpectedCalls = nil
			failing.On("Wait", mock.AnythingOfType("time.Duration")).Return(true)
			failing.On("ExitCode").Return(1, nil)
			failing.On("StdoutFile").Return(func() *os.File {
				file, err := os.Open(path.Join(dir, "stdouta"))
				So(err, ShouldBeNil)
				return file
			}, nil)
			failing.On("StderrFile").Return(func() *os.File {
				file, err := os.Open(stderrPath)
				So(err, ShouldBeNil)
				return file
			}, nil)
			failing.On("Clean").Return(nil)
			failing.On("EraseOutput").Return(nil)

			mExecutor.On("Execute", argv).Return(failing, nil).Once()
			for i := 1; i < len(outputs); i++ {
				mExecutor.On("Execute", argv).Return(finishedTask(dir, i, outputs[i]), nil).Once()
			}

			file, err := runner.RunBenchmark(config)

			Convey("Its metrics are still used", func() {
				So(err, ShouldBeNil)
				failing.AssertCalled(t, "StderrFile")
				So(observer.finished[0].ExitCode, ShouldEqual, 1)
				So(observer.finished[0].Succeeded(), ShouldBeTrue)
				So(file.ActiveTimes, ShouldResemble, []int64{10, 20, 30, 40, 50})
				So(file.Skipped, ShouldEqual, 0)
			})
		})

		Convey("When output is kept", func() {
			runner.config.KeepOutput = true
			var tasks []*mocks.TaskHandle
			for i, output := range outputs {
				task := finishedTask(dir, i, output)
				tasks = append(tasks, task)
				mExecutor.On("Execute", argv).Return(task, nil).Once()
			}

			_, err := runner.RunBenchmark(config)

			So(err, ShouldBeNil)
			for _, task := range tasks {
				task.AssertNotCalled(t, "EraseOutput")
			}
		})

		Convey("When run count is below three", func() {
			config.Runs = 2

			_, err := runner.RunBenchmark(config)

			So(errors.Cause(err), ShouldEqual, ErrInvalidConfiguration)
			mExecutor.AssertNotCalled(t, "Execute", argv)
		})
	})
}
