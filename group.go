//  Copyright (c) 2018 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the
//  License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing,
//  software distributed under the License is distributed on an "AS
//  IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
//  express or implied. See the License for the specific language
//  governing permissions and limitations under the License.

package threadstacks

import (
	"sort"
)

// A Result groups every goroutine whose captured stack describes the
// same code path.  IDs is sorted ascending; Trace is one
// representative of the group.
type Result struct {
	IDs   []int64      `json:"ids"`
	Trace *ThreadStack `json:"trace"`
}

// groupStacks partitions stacks into equivalence classes of identical
// traces.  The result ordering is deterministic given the multiset of
// captured stacks: classes appear in trace order, ids ascending
// within a class.
func groupStacks(stacks []*ThreadStack) []Result {
	sorted := append([]*ThreadStack(nil), stacks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].Compare(sorted[j]); c != 0 {
			return c < 0
		}
		return sorted[i].ID < sorted[j].ID
	})

	var rv []Result
	for _, s := range sorted {
		if n := len(rv); n > 0 && rv[n-1].Trace.EqualTrace(s) {
			rv[n-1].IDs = append(rv[n-1].IDs, s.ID)
			continue
		}
		rv = append(rv, Result{IDs: []int64{s.ID}, Trace: s})
	}
	return rv
}
