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
	"fmt"
	"sync"
	"time"
)

// DefaultReportRingSize is the number of dump reports retained by the
// process-wide DumpReports ring.
var DefaultReportRingSize = 16

// A Report is a retained copy of a formatted stack dump, along with
// the trigger that produced it ("internal", "external" or "rest").
type Report struct {
	When    time.Time `json:"when"`
	Trigger string    `json:"trigger"`
	Body    string    `json:"body"`
}

// A ReportRing remembers the last numReports reports, so that recent
// dumps remain inspectable over REST even after they have scrolled
// off stderr.
type ReportRing struct {
	m       sync.Mutex
	next    int
	reports []*Report
}

func NewReportRing(numReports int) (*ReportRing, error) {
	if numReports <= 0 {
		return nil, fmt.Errorf("report_ring:"+
			" bad numReports: %d", numReports)
	}
	return &ReportRing{
		reports: make([]*Report, 0, numReports),
	}, nil
}

// Add retains a copy of body under the given trigger, evicting the
// oldest report once the ring is full.
func (r *ReportRing) Add(trigger string, body []byte) {
	report := &Report{
		When:    time.Now(),
		Trigger: trigger,
		Body:    string(body),
	}

	r.m.Lock()
	if len(r.reports) < cap(r.reports) {
		r.reports = append(r.reports, report)
	} else {
		r.reports[r.next] = report
	}
	r.next = (r.next + 1) % cap(r.reports)
	r.m.Unlock()
}

// Reports returns a snapshot of the retained reports, oldest first.
func (r *ReportRing) Reports() []*Report {
	r.m.Lock()
	defer r.m.Unlock()

	rv := make([]*Report, 0, len(r.reports))
	if len(r.reports) < cap(r.reports) {
		rv = append(rv, r.reports...)
		return rv
	}
	rv = append(rv, r.reports[r.next:]...)
	rv = append(rv, r.reports[:r.next]...)
	return rv
}
