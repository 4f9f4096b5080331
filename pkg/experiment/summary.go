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
	"strconv"

	"github.com/harsha-simhadri/sbsched/pkg/results"
	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const summaryPrecision = 3

var summaryHeaders = []string{"Metric", "Samples", "Trimmed mean", "Median", "Std dev", "Min", "Max"}

// MetricSummary describes distribution of one metric's samples.
type MetricSummary struct {
	Name        string
	Samples     int
	TrimmedMean float64
	Median      float64
	StdDev      float64
	Min         float64
	Max         float64
}

// Summarize computes distribution of the samples. Trimmed mean is taken
// as already computed, scale divides raw samples.
func Summarize(name string, samples []int64, trimmedMean float64, scale float64) (MetricSummary, error) {
	data := make(stats.Float64Data, 0, len(samples))
	for _, sample := range samples {
		data = append(data, float64(sample)/scale)
	}

	summary := MetricSummary{Name: name, Samples: len(samples), TrimmedMean: trimmedMean}
	var err error
	if summary.Median, err = stats.Median(data); err != nil {
		return summary, errors.Wrapf(err, "cannot compute median of %s", name)
	}
	if summary.StdDev, err = stats.StandardDeviation(data); err != nil {
		return summary, errors.Wrapf(err, "cannot compute standard deviation of %s", name)
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return summary, errors.Wrapf(err, "cannot compute minimum of %s", name)
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return summary, errors.Wrapf(err, "cannot compute maximum of %s", name)
	}
	return summary, nil
}

// Row returns the summary as table row.
func (s MetricSummary) Row() []string {
	return []string{
		s.Name,
		strconv.Itoa(s.Samples),
		fixed(s.TrimmedMean),
		fixed(s.Median),
		fixed(s.StdDev),
		fixed(s.Min),
		fixed(s.Max),
	}
}

func fixed(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(summaryPrecision)
}

// PrintSummary draws a table with both metrics of the results file.
func PrintSummary(w io.Writer, file results.File, path string) error {
	activeTime, err := Summarize("Active time [ms]", file.ActiveTimes, file.AvgActiveTime, 1)
	if err != nil {
		return err
	}
	l3Misses, err := Summarize("L3 misses [millions]", file.L3Misses, file.AvgL3MissesMillions, 1000000)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Results of %d runs (%d skipped) saved to %s\n", file.Runs, file.Skipped, path)
	table := tablewriter.NewWriter(w)
	table.SetHeader(summaryHeaders)
	table.Append(activeTime.Row())
	table.Append(l3Misses.Row())
	table.Render()
	return nil
}
