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

package isolation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// nodeList matches a single entry of numactl node or CPU list.
var nodeList = regexp.MustCompile(`^(all|[0-9]+(-[0-9]+)?)$`)

// Numactl stores information about numactl configuration.
// All parameters are described in numactl manual.
// http://linux.die.net/man/8/numactl
type Numactl struct {
	// interleaveNodes accepts node numbers, ranges as well as "all".
	interleaveNodes  []string
	cpunodebindNodes []string
	physcpubindCPUs  []string
}

// NewNumactl is a constructor which returns Numactl object. Empty entries are dropped.
func NewNumactl(interleaveNodes, cpunodebindNodes, physcpubindCPUs []string) Numactl {
	return Numactl{
		interleaveNodes:  nonEmpty(interleaveNodes),
		cpunodebindNodes: nonEmpty(cpunodebindNodes),
		physcpubindCPUs:  nonEmpty(physcpubindCPUs),
	}
}

// NewInterleave returns numactl decorator which only interleaves memory on given nodes.
func NewInterleave(nodes ...string) Numactl {
	return NewNumactl(nodes, nil, nil)
}

// Validate checks every node and CPU entry is a number, a range or "all".
func (n Numactl) Validate() error {
	lists := []struct {
		option string
		values []string
	}{
		{"interleave", n.interleaveNodes},
		{"cpunodebind", n.cpunodebindNodes},
		{"physcpubind", n.physcpubindCPUs},
	}
	for _, list := range lists {
		for _, value := range list.values {
			if !nodeList.MatchString(value) {
				return errors.Errorf("invalid %s entry %q, expected number, range or %q", list.option, value, AllNodes)
			}
		}
	}
	return nil
}

// Name describes the binding: interleaved nodes followed by CPU binding if any.
func (n Numactl) Name() string {
	parts := []string{strings.Join(n.interleaveNodes, ",")}
	if len(n.cpunodebindNodes) > 0 {
		parts = append(parts, "cpunode", strings.Join(n.cpunodebindNodes, ","))
	}
	if len(n.physcpubindCPUs) > 0 {
		parts = append(parts, "physcpu", strings.Join(n.physcpubindCPUs, ","))
	}
	return strings.Join(parts, "_")
}

// Binary implements Wrapper interface.
func (n Numactl) Binary() string {
	return "numactl"
}

// Decorate implements Decorator interface.
func (n Numactl) Decorate(argv []string) []string {
	numaOptions := []string{n.Binary()}
	if len(n.interleaveNodes) > 0 {
		numaOptions = append(numaOptions, fmt.Sprintf("--interleave=%s", strings.Join(n.interleaveNodes, ",")))
	}
	if len(n.physcpubindCPUs) > 0 {
		numaOptions = append(numaOptions, fmt.Sprintf("--physcpubind=%s", strings.Join(n.physcpubindCPUs, ",")))
	}
	if len(n.cpunodebindNodes) > 0 {
		numaOptions = append(numaOptions, fmt.Sprintf("--cpunodebind=%s", strings.Join(n.cpunodebindNodes, ",")))
	}

	numaOptions = append(numaOptions, "--")
	return append(numaOptions, argv...)
}

func nonEmpty(values []string) (result []string) {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			result = append(result, value)
		}
	}
	return result
}
