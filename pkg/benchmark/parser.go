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
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// ActiveTimeTag starts the line with active time in milliseconds.
	ActiveTimeTag = "T: "
	// L3MissesTag starts the line with L3 cache misses count.
	L3MissesTag = "L3_MISSES: "

	readerSize    = 64 * 1024
	maxLineLength = 1024 * 1024
)

// Sample is one run's pair of metrics.
type Sample struct {
	ActiveTimeMs int64
	L3Misses     int64
}

// PartialSample holds metrics found in a run's output. A nil field means
// the metric line was not printed.
type PartialSample struct {
	ActiveTimeMs *int64
	L3Misses     *int64
}

// Complete turns partial sample into Sample. It fails when any metric is missing.
func (p PartialSample) Complete() (Sample, error) {
	var missing []string
	if p.ActiveTimeMs == nil {
		missing = append(missing, strings.TrimSpace(ActiveTimeTag))
	}
	if p.L3Misses == nil {
		missing = append(missing, strings.TrimSpace(L3MissesTag))
	}
	if len(missing) > 0 {
		return Sample{}, errors.Wrapf(ErrMalformedOutput, "missing %s line", strings.Join(missing, " and "))
	}

	return Sample{ActiveTimeMs: *p.ActiveTimeMs, L3Misses: *p.L3Misses}, nil
}

// ParseMetrics scans program output for metric lines. Value is the second
// whitespace separated token of the line. Unrelated lines are ignored
// whatever their length. A repeated metric line or a non integer value is
// MalformedOutput.
func ParseMetrics(output io.Reader) (PartialSample, error) {
	var partial PartialSample

	reader := bufio.NewReaderSize(output, readerSize)
	for lineNumber := 1; ; lineNumber++ {
		line, tagged, err := readLine(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			return PartialSample{}, errors.Wrapf(ErrMalformedOutput, "line %d: cannot read output: %v", lineNumber, err)
		}
		if !tagged {
			continue
		}

		target := &partial.L3Misses
		if strings.HasPrefix(line, ActiveTimeTag) {
			target = &partial.ActiveTimeMs
		}

		if *target != nil {
			return PartialSample{}, errors.Wrapf(ErrMalformedOutput, "line %d: duplicated metric line %q", lineNumber, line)
		}

		value, err := metricValue(line)
		if err != nil {
			return PartialSample{}, errors.Wrapf(ErrMalformedOutput, "line %d: %v", lineNumber, err)
		}
		*target = &value
	}

	return partial, nil
}

// readLine reads next line and tells whether it starts with a metric tag.
// Untagged lines are consumed chunk by chunk and never returned, so their
// length is not limited.
func readLine(reader *bufio.Reader) (line string, tagged bool, err error) {
	chunk, isPrefix, err := reader.ReadLine()
	if err != nil {
		return "", false, err
	}

	tagged = bytes.HasPrefix(chunk, []byte(ActiveTimeTag)) || bytes.HasPrefix(chunk, []byte(L3MissesTag))
	var buffer []byte
	if tagged {
		buffer = append(buffer, chunk...)
	}

	for isPrefix {
		if chunk, isPrefix, err = reader.ReadLine(); err != nil {
			return "", false, err
		}
		if !tagged {
			continue
		}
		if len(buffer)+len(chunk) > maxLineLength {
			return "", false, errors.Errorf("metric line longer than %d bytes", maxLineLength)
		}
		buffer = append(buffer, chunk...)
	}

	return string(buffer), tagged, nil
}

func metricValue(line string) (int64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, errors.Errorf("no value in %q", line)
	}

	value, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0, errors.Errorf("cannot parse integer from %q in %q", fields[1], line)
	}
	return value, nil
}
