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

import "fmt"

// Hugectl runs the process through libhugetlbfs hugectl so that its heap is
// backed by huge pages of given size (for example "2M").
type Hugectl struct {
	heapPageSize string
}

// NewHugectl is a constructor for Hugectl decorator.
func NewHugectl(heapPageSize string) Hugectl {
	return Hugectl{heapPageSize: heapPageSize}
}

// Binary implements Wrapper interface.
func (h Hugectl) Binary() string {
	return "hugectl"
}

// Decorate implements Decorator interface.
// Empty page size means the default huge page size.
func (h Hugectl) Decorate(argv []string) []string {
	heap := "--heap"
	if h.heapPageSize != "" {
		heap = fmt.Sprintf("--heap=%s", h.heapPageSize)
	}
	return append([]string{h.Binary(), heap}, argv...)
}
