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
	"testing"
)

func TestReportRing(t *testing.T) {
	if r, err := NewReportRing(0); err == nil || r != nil {
		t.Errorf("expected 0 ring size to fail")
	}

	if r, err := NewReportRing(-1); err == nil || r != nil {
		t.Errorf("expected -1 ring size to fail")
	}

	// ------------------------------------------------

	r, err := NewReportRing(1)
	if err != nil || r == nil {
		t.Errorf("expected NewReportRing to work")
	}
	reports := r.Reports()
	if reports == nil || len(reports) != 0 {
		t.Errorf("expected reports to be empty")
	}

	r.Add("internal", []byte("dump0"))
	reports = r.Reports()
	if len(reports) != 1 {
		t.Errorf("expected reports to have 1 report")
	}
	if reports[0].Body != "dump0" || reports[0].Trigger != "internal" {
		t.Errorf("expected reports[0] to be dump0/internal")
	}
	if reports[0].When.IsZero() {
		t.Errorf("expected reports[0] to carry a timestamp")
	}

	r.Add("external", []byte("dump1"))
	reports = r.Reports()
	if len(reports) != 1 {
		t.Errorf("expected reports to still have 1 report")
	}
	if reports[0].Body != "dump1" {
		t.Errorf("expected reports[0] to be dump1")
	}

	// ------------------------------------------------

	r, err = NewReportRing(2)
	if err != nil || r == nil {
		t.Errorf("expected NewReportRing to work")
	}

	r.Add("internal", []byte("dump0"))
	r.Add("internal", []byte("dump1"))
	r.Add("internal", []byte("dump2"))

	reports = r.Reports()
	if len(reports) != 2 {
		t.Errorf("expected reports to have 2 reports")
	}
	if reports[0].Body != "dump1" || reports[1].Body != "dump2" {
		t.Errorf("expected oldest-first [dump1 dump2], got: [%s %s]",
			reports[0].Body, reports[1].Body)
	}
}

func TestReportRingCopiesBody(t *testing.T) {
	r, _ := NewReportRing(1)
	body := []byte("abc")
	r.Add("internal", body)
	body[0] = 'x'
	if r.Reports()[0].Body != "abc" {
		t.Errorf("expected the ring to keep its own copy of the body")
	}
}
