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
	"reflect"
	"testing"
)

func mkStack(id int64, pcs ...uintptr) *ThreadStack {
	s := &ThreadStack{ID: id, State: "running"}
	for _, pc := range pcs {
		s.AddFrame(Frame{PC: pc})
	}
	return s
}

func TestGroupStacks(t *testing.T) {
	results := groupStacks([]*ThreadStack{
		mkStack(5, 1, 2),
		mkStack(1, 1, 2),
		mkStack(3, 7),
		mkStack(2, 1, 2),
	})

	if len(results) != 2 {
		t.Errorf("expected 2 groups, got: %d", len(results))
	}

	// Shallower trace sorts first.
	if !reflect.DeepEqual(results[0].IDs, []int64{3}) {
		t.Errorf("expected ids [3], got: %v", results[0].IDs)
	}
	if !reflect.DeepEqual(results[1].IDs, []int64{1, 2, 5}) {
		t.Errorf("expected ids [1 2 5], got: %v", results[1].IDs)
	}
	if results[1].Trace.Depth != 2 {
		t.Errorf("expected representative trace of depth 2")
	}
}

func TestGroupStacksDeterministic(t *testing.T) {
	a := []*ThreadStack{
		mkStack(2, 1, 2),
		mkStack(1, 1, 3),
		mkStack(3, 1, 2),
	}
	b := []*ThreadStack{
		a[2], a[0], a[1],
	}

	ra := groupStacks(a)
	rb := groupStacks(b)

	if len(ra) != len(rb) {
		t.Errorf("expected same group count regardless of input order")
	}
	for i := range ra {
		if !reflect.DeepEqual(ra[i].IDs, rb[i].IDs) {
			t.Errorf("group: %d, expected same ids, got: %v vs %v",
				i, ra[i].IDs, rb[i].IDs)
		}
	}
}

func TestGroupStacksEmpty(t *testing.T) {
	if results := groupStacks(nil); len(results) != 0 {
		t.Errorf("expected no groups for no stacks")
	}
}
