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

// Package results models the plain text timings file written after a
// benchmark: raw samples of both metrics followed by their trimmed averages.
//
// Layout (downstream scripts depend on it):
//
//	<empty line>
//	<active time samples, each followed by three spaces>
//	<L3 miss samples, each followed by three spaces>
//	<empty line>
//	  ============
//	Avg Active Time: <float>
//	Avg L3_misses: <float, millions>
//	Skipped runs: <count>        (only when some runs were skipped)
package results

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	sampleSeparator    = "   "
	separatorLine      = "  ============"
	activeTimeLabel    = "Avg Active Time: "
	l3MissesLabel      = "Avg L3_misses: "
	skippedRunsLabel   = "Skipped runs: "
	timestampFormat    = "_%d.%d.%d.%d.%d.%d"
	nameComponentSlash = "_"
)

// Header describes the benchmark which produced the file.
type Header struct {
	Host      string
	Program   string
	Args      []string
	Runs      int
	Policy    string
	Timestamp time.Time
	// Skipped is the number of runs excluded from samples.
	Skipped int
}

// File is the result of one benchmark. ActiveTimes and L3Misses are aligned:
// index i of both comes from the same run.
type File struct {
	Header
	ActiveTimes []int64
	L3Misses    []int64
	// AvgActiveTime is trimmed mean of ActiveTimes in milliseconds.
	AvgActiveTime float64
	// AvgL3MissesMillions is trimmed mean of L3Misses in millions.
	AvgL3MissesMillions float64
}

// Name returns file name: <program>_runs_<N>[_<arg>...]_sock_<policy>__<Y>.<m>.<d>.<H>.<M>.<S>.
func (f File) Name() string {
	name := fmt.Sprintf("%s_runs_%d", nameComponent(f.Program), f.Runs)
	for _, arg := range f.Args {
		name += "_" + nameComponent(arg)
	}
	name += "_sock_" + nameComponent(f.Policy) + "_"

	ts := f.Timestamp
	name += fmt.Sprintf(timestampFormat, ts.Year(), int(ts.Month()), ts.Day(), ts.Hour(), ts.Minute(), ts.Second())
	return name
}

func nameComponent(component string) string {
	return strings.Replace(component, string(filepath.Separator), nameComponentSlash, -1)
}

// WriteTo writes file content to w.
func (f File) WriteTo(w io.Writer) (int64, error) {
	buffer := &bytes.Buffer{}

	buffer.WriteString("\n")
	writeSamples(buffer, f.ActiveTimes)
	writeSamples(buffer, f.L3Misses)
	buffer.WriteString("\n")
	buffer.WriteString(separatorLine + "\n")
	buffer.WriteString(activeTimeLabel + FormatFloat(f.AvgActiveTime) + "\n")
	buffer.WriteString(l3MissesLabel + FormatFloat(f.AvgL3MissesMillions) + "\n")
	if f.Skipped > 0 {
		buffer.WriteString(skippedRunsLabel + strconv.Itoa(f.Skipped) + "\n")
	}

	return buffer.WriteTo(w)
}

func writeSamples(buffer *bytes.Buffer, samples []int64) {
	for _, sample := range samples {
		buffer.WriteString(strconv.FormatInt(sample, 10))
		buffer.WriteString(sampleSeparator)
	}
	buffer.WriteString("\n")
}

// Save writes the file as <root>/<host>/<name> and returns its path.
// Existing files are never overwritten.
func Save(root string, f File) (string, error) {
	dir := filepath.Join(root, f.Host)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "cannot create results directory %q", dir)
	}

	filePath := filepath.Join(dir, f.Name())
	output, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", errors.Wrapf(err, "cannot create results file %q", filePath)
	}

	if _, err = f.WriteTo(output); err != nil {
		output.Close()
		return "", errors.Wrapf(err, "cannot write results file %q", filePath)
	}

	return filePath, errors.Wrapf(output.Close(), "cannot close results file %q", filePath)
}

// Load reads and parses the results file from given path.
func Load(filePath string) (File, error) {
	input, err := os.Open(filePath)
	if err != nil {
		return File{}, errors.Wrapf(err, "cannot open results file %q", filePath)
	}
	defer input.Close()

	f, err := Parse(input)
	return f, errors.Wrapf(err, "cannot parse results file %q", filePath)
}

// Parse reads samples, averages and skipped runs count back from file content.
// Other header fields are only encoded in the file name and stay empty.
func Parse(r io.Reader) (File, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return File{}, errors.Wrap(err, "cannot read results")
	}

	if len(lines) < 7 {
		return File{}, errors.Errorf("results have %d lines, expected at least 7", len(lines))
	}
	if lines[0] != "" || strings.TrimSpace(lines[3]) != "" {
		return File{}, errors.New("results do not start with the expected empty line")
	}
	if strings.TrimSpace(lines[4]) != strings.TrimSpace(separatorLine) {
		return File{}, errors.Errorf("expected separator line, got %q", lines[4])
	}

	var (
		f   File
		err error
	)
	if f.ActiveTimes, err = parseSamples(lines[1]); err != nil {
		return File{}, errors.Wrap(err, "cannot parse active time samples")
	}
	if f.L3Misses, err = parseSamples(lines[2]); err != nil {
		return File{}, errors.Wrap(err, "cannot parse L3 misses samples")
	}
	if len(f.ActiveTimes) != len(f.L3Misses) {
		return File{}, errors.Errorf("got %d active time samples and %d L3 misses samples", len(f.ActiveTimes), len(f.L3Misses))
	}
	if f.AvgActiveTime, err = parseLabeledFloat(lines[5], activeTimeLabel); err != nil {
		return File{}, err
	}
	if f.AvgL3MissesMillions, err = parseLabeledFloat(lines[6], l3MissesLabel); err != nil {
		return File{}, err
	}

	for _, line := range lines[7:] {
		if !strings.HasPrefix(line, skippedRunsLabel) {
			continue
		}
		if f.Skipped, err = strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, skippedRunsLabel))); err != nil {
			return File{}, errors.Wrapf(err, "cannot parse skipped runs from %q", line)
		}
	}
	f.Runs = len(f.ActiveTimes) + f.Skipped

	return f, nil
}

func parseSamples(line string) ([]int64, error) {
	var samples []int64
	for _, field := range strings.Fields(line) {
		sample, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func parseLabeledFloat(line, label string) (float64, error) {
	if !strings.HasPrefix(line, label) {
		return 0, errors.Errorf("expected %q line, got %q", strings.TrimSpace(label), line)
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(line, label)), 64)
	return value, errors.Wrapf(err, "cannot parse %q", line)
}

// FormatFloat renders float as the shortest representation that round trips.
// Integral values keep ".0". Exponent form is used below 1e-4 and from 1e16 on.
// Older timings files rounded averages to 12 significant digits, so their
// values may be shorter than the ones written here.
func FormatFloat(value float64) string {
	switch {
	case math.IsInf(value, 1):
		return "inf"
	case math.IsInf(value, -1):
		return "-inf"
	case math.IsNaN(value):
		return "nan"
	}

	abs := math.Abs(value)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(value, 'e', -1, 64)
	}

	formatted := strconv.FormatFloat(value, 'f', -1, 64)
	if !strings.Contains(formatted, ".") {
		formatted += ".0"
	}
	return formatted
}
