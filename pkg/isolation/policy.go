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

const (
	// DefaultHeapPageSize is huge page size used for the benchmarked heap.
	DefaultHeapPageSize = "2M"
	// AllNodes interleaves memory over every NUMA node.
	AllNodes = "all"
)

// Policy is the resource binding applied to every benchmark run: huge page
// backed heap, NUMA interleaved memory placement and optional CPU binding.
type Policy struct {
	// Name identifies the policy in result file names.
	Name       string
	numactl    Numactl
	decorators Decorators
}

// NewPolicy builds the binding: `hugectl --heap=<size> numactl --interleave=<nodes> [cpu binding] -- <command>`.
// Memory is interleaved over all nodes when numactl has no interleave nodes.
func NewPolicy(heapPageSize string, numactl Numactl) Policy {
	if len(numactl.interleaveNodes) == 0 {
		numactl.interleaveNodes = []string{AllNodes}
	}

	return Policy{
		Name:    numactl.Name(),
		numactl: numactl,
		decorators: Decorators{
			numactl,
			NewHugectl(heapPageSize),
		},
	}
}

// DefaultPolicy returns 2M huge page heap with memory interleaved over all nodes.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultHeapPageSize, NewInterleave(AllNodes))
}

// Validate checks node and CPU lists of the binding.
func (p Policy) Validate() error {
	return p.numactl.Validate()
}

// Decorate implements Decorator interface.
func (p Policy) Decorate(argv []string) []string {
	return p.decorators.Decorate(argv)
}

// Binaries returns wrapper binaries the policy needs, outermost first.
func (p Policy) Binaries() (binaries []string) {
	for i := len(p.decorators) - 1; i >= 0; i-- {
		if wrapper, ok := p.decorators[i].(Wrapper); ok {
			binaries = append(binaries, wrapper.Binary())
		}
	}
	return binaries
}
