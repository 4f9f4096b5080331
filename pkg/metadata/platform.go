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

package metadata

import (
	"bufio"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Keys of the platform metrics map.
const (
	CPUModelNameKey  = "cpu_model"
	KernelVersionKey = "kernel_version"
	CPUTopologyKey   = "cpu_topology"
	NUMATopologyKey  = "numa_topology"
	PowerGovernorKey = "power_governor"
	HugePagesKey     = "huge_pages"
)

var cpuDirectory = regexp.MustCompile("^cpu[0-9]+$")

// GetPlatformMetrics gathers details of the machine which influence
// measurements. Metrics which cannot be read are left empty.
func GetPlatformMetrics() map[string]string {
	getters := []struct {
		key    string
		getter func() (string, error)
	}{
		{CPUModelNameKey, CPUModelName},
		{KernelVersionKey, KernelVersion},
		{CPUTopologyKey, CPUTopology},
		{NUMATopologyKey, NUMATopology},
		{PowerGovernorKey, PowerGovernor},
		{HugePagesKey, HugePages},
	}

	platformMetrics := make(map[string]string, len(getters))
	for _, g := range getters {
		value, err := g.getter()
		if err != nil {
			logrus.Warnf("Failed to get %s platform metric. Skipping. Error: %v", g.key, err)
		}
		platformMetrics[g.key] = value
	}
	return platformMetrics
}

// CPUModelName reads model name from /proc/cpuinfo.
func CPUModelName() (string, error) {
	file, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return "", errors.Wrap(err, "cannot open /proc/cpuinfo")
	}
	defer file.Close()

	value, err := findKey(file, "model name")
	return value, errors.Wrap(err, "/proc/cpuinfo")
}

// KernelVersion returns content of /proc/version.
func KernelVersion() (string, error) {
	return readContents("/proc/version")
}

// CPUTopology returns output of `lscpu -e`.
func CPUTopology() (string, error) {
	return commandOutput("lscpu", "-e")
}

// NUMATopology returns output of `numactl --hardware`.
func NUMATopology() (string, error) {
	return commandOutput("numactl", "--hardware")
}

// HugePages returns huge page pool size and page size from /proc/meminfo.
func HugePages() (string, error) {
	content, err := ioutil.ReadFile("/proc/meminfo")
	if err != nil {
		return "", errors.Wrap(err, "cannot read /proc/meminfo")
	}

	var output []string
	for _, key := range []string{"HugePages_Total", "HugePages_Free", "Hugepagesize"} {
		value, err := findKey(strings.NewReader(string(content)), key)
		if err != nil {
			return "", errors.Wrap(err, "/proc/meminfo")
		}
		output = append(output, fmt.Sprintf("%s:%s", key, value))
	}
	return strings.Join(output, ","), nil
}

// PowerGovernor returns scaling governor of every CPU as `<cpu>:<governor>` list.
func PowerGovernor() (string, error) {
	dir := "/sys/devices/system/cpu"
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return "", errors.Wrap(err, "cannot scan sysfs for CPU devices")
	}

	var output []string
	for _, file := range files {
		if !file.IsDir() || !cpuDirectory.MatchString(file.Name()) {
			continue
		}
		governor, err := readContents(path.Join(dir, file.Name(), "cpufreq/scaling_governor"))
		if err != nil {
			return "", err
		}
		output = append(output, fmt.Sprintf("%s:%s", strings.TrimPrefix(file.Name(), "cpu"), governor))
	}
	return strings.Join(output, ","), nil
}

// findKey returns value of the first `key: value` line with given key.
func findKey(r io.Reader, key string) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		chunks := strings.SplitN(scanner.Text(), ":", 2)
		if len(chunks) == 2 && strings.TrimSpace(chunks[0]) == key {
			return strings.TrimSpace(chunks[1]), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", errors.Errorf("did not find %q", key)
}

func commandOutput(name string, args ...string) (string, error) {
	output, err := exec.Command(name, args...).Output()
	if err != nil {
		return "", errors.Wrapf(err, "failed to get output from %s %s", name, strings.Join(args, " "))
	}
	return strings.TrimSpace(string(output)), nil
}

func readContents(name string) (string, error) {
	content, err := ioutil.ReadFile(name)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", name)
	}
	return strings.TrimSpace(string(content)), nil
}
