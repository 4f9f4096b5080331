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
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
)

// MinSamples is the smallest sample count that survives trimming one
// minimum and one maximum.
const MinSamples = 3

const million = 1000000

// Trim returns copy of samples without the first occurrence of the maximum
// and then the first occurrence of the minimum. Order of the rest is kept.
func Trim(samples []int64) ([]int64, error) {
	if len(samples) < MinSamples {
		return nil, errors.Wrapf(ErrInsufficientSamples, "got %d samples, need at least %d", len(samples), MinSamples)
	}

	trimmed := append([]int64{}, samples...)
	trimmed = removeAt(trimmed, indexOfMax(trimmed))
	trimmed = removeAt(trimmed, indexOfMin(trimmed))
	return trimmed, nil
}

// TrimmedMean is arithmetic mean of samples after Trim.
func TrimmedMean(samples []int64) (float64, error) {
	trimmed, err := Trim(samples)
	if err != nil {
		return 0, err
	}

	sum, err := stats.Sum(toFloat64Data(trimmed))
	if err != nil {
		return 0, errors.Wrap(err, "cannot sum trimmed samples")
	}
	return sum / float64(len(trimmed)), nil
}

// TrimmedMeanMillions is TrimmedMean reported in millions:
// sum(trimmed) / (1000000 * len(trimmed)).
func TrimmedMeanMillions(samples []int64) (float64, error) {
	trimmed, err := Trim(samples)
	if err != nil {
		return 0, err
	}

	sum, err := stats.Sum(toFloat64Data(trimmed))
	if err != nil {
		return 0, errors.Wrap(err, "cannot sum trimmed samples")
	}
	return sum / float64(million*len(trimmed)), nil
}

func toFloat64Data(samples []int64) stats.Float64Data {
	data := make(stats.Float64Data, 0, len(samples))
	for _, sample := range samples {
		data = append(data, float64(sample))
	}
	return data
}

func indexOfMax(samples []int64) int {
	index := 0
	for i, sample := range samples {
		if sample > samples[index] {
			index = i
		}
	}
	return index
}

func indexOfMin(samples []int64) int {
	index := 0
	for i, sample := range samples {
		if sample < samples[index] {
			index = i
		}
	}
	return index
}

func removeAt(samples []int64, index int) []int64 {
	return append(samples[:index], samples[index+1:]...)
}
