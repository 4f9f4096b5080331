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

package main

import (
	"os"
	"time"

	"github.com/harsha-simhadri/sbsched/pkg/benchmark"
	"github.com/harsha-simhadri/sbsched/pkg/conf"
	"github.com/harsha-simhadri/sbsched/pkg/executor"
	"github.com/harsha-simhadri/sbsched/pkg/experiment"
	"github.com/harsha-simhadri/sbsched/pkg/isolation"
	"github.com/harsha-simhadri/sbsched/pkg/metadata"
	"github.com/harsha-simhadri/sbsched/pkg/results"
	"github.com/harsha-simhadri/sbsched/pkg/utils/errutil"
	"github.com/harsha-simhadri/sbsched/pkg/utils/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const appName = "collect-data"

// settings are exposed as flags and environment variables by conf.Process.
type settings struct {
	TestDir    string        `help:"Directory with benchmarked programs." default:"test"`
	TimingsDir string        `help:"Directory where results files are saved, one subdirectory per host." default:"timings"`
	RunTimeout time.Duration `help:"Timeout of a single run. Zero disables it." default:"0s"`
	OutputDir  string        `help:"Directory for stdout and stderr files of runs. Empty means system temporary directory."`
	Progress   bool          `help:"Draw progress bar when log level is error." default:"true"`

	HugeHeap    string   `help:"Huge page size backing the program heap." default:"2M"`
	Interleave  []string `help:"NUMA nodes memory of the program is interleaved over." default:"all"`
	CPUNodeBind []string `help:"NUMA nodes the program is allowed to run on. Empty means any." name:"cpunodebind"`
	PhysCPUBind []string `help:"CPUs the program is allowed to run on. Empty means any." name:"physcpubind"`
}

var (
	collectSettings settings

	runsArg    = conf.NewStringArg("runs", "Number of runs, at least 3.")
	programArg = conf.NewStringArg("program", "Program name, resolved under test_dir.")
	argsArg    = conf.NewStringsArg("args", "Arguments passed verbatim to the program.")
)

func init() {
	errutil.Check(conf.Process(&collectSettings))
}

func main() {
	conf.SetAppName(appName)
	conf.SetHelp(`Runs a program repeatedly with huge page heap and NUMA interleaved memory,
collects active time and L3 misses it reports and saves trimmed means to a results file.`)

	experimentStart := time.Now()
	errorLevelEnabled := experiment.Configure()
	errutil.CheckWithContext(conf.Process(&collectSettings), "Cannot read settings")

	experimentID := uuid.New()
	logCloser, err := experiment.InitializeLogger(appName, experimentID)
	errutil.CheckWithContext(err, "Cannot initialize logger")
	defer logCloser.Close()

	hostname, err := os.Hostname()
	errutil.CheckWithContext(err, "Cannot retrieve hostname")

	numactl := isolation.NewNumactl(collectSettings.Interleave, collectSettings.CPUNodeBind, collectSettings.PhysCPUBind)
	policy := isolation.NewPolicy(collectSettings.HugeHeap, numactl)
	config, err := benchmark.NewRunConfiguration(hostname, collectSettings.TestDir, programArg.Value(), runsArg.Value(), argsArg.Value(), policy, collectSettings.RunTimeout)
	errutil.CheckWithExitCode(err, "Invalid configuration", experiment.ExUsage)

	err = benchmark.CheckSpawnable(config)
	errutil.CheckWithContext(err, "Cannot run benchmark")

	var metadataDB metadata.Metadata
	if metadata.Enabled() {
		metadataDB, err = metadata.NewDefault(experimentID)
		errutil.CheckWithContext(err, "Cannot connect to metadata database")
		defer metadataDB.Close()
		err = metadata.RecordRuntimeEnv(metadataDB, experimentStart)
		errutil.CheckWithContext(err, "Cannot save runtime environment to metadata database")
	}

	observers := benchmark.Observers{experiment.NewLoggingObserver(experimentID)}
	var progress *experiment.ProgressObserver
	if errorLevelEnabled && collectSettings.Progress {
		progress = experiment.NewProgressObserver(config.Runs, os.Stderr)
		observers = append(observers, progress)
	}

	var localExecutor executor.Executor = executor.NewLocal()
	if collectSettings.OutputDir != "" {
		localExecutor = executor.NewLocalWithOutputDir(collectSettings.OutputDir)
	}
	runnerConfig := benchmark.DefaultConfig()
	runnerConfig.Observer = observers
	runner := benchmark.New(localExecutor, runnerConfig)

	file, err := runner.RunBenchmark(config)
	if progress != nil {
		progress.Finish()
	}
	if errors.Cause(err) == benchmark.ErrInvalidConfiguration {
		errutil.CheckWithExitCode(err, "Invalid configuration", experiment.ExUsage)
	}
	errutil.CheckWithContext(err, "Benchmark failed")

	path, err := results.Save(collectSettings.TimingsDir, file)
	errutil.CheckWithContext(err, "Cannot save results")
	logrus.WithField("experiment", experimentID).Infof("Results saved to %q", path)

	err = experiment.PrintSummary(os.Stdout, file, path)
	errutil.CheckWithContext(err, "Cannot print summary")

	if metadataDB != nil {
		err = metadata.RecordResults(metadataDB, file, path)
		errutil.CheckWithContext(err, "Cannot save results to metadata database")
	}
}
