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
	"runtime"
	"sync/atomic"
	"time"

	log "github.com/couchbase/clog"
)

// CollectTimeout bounds how long Collect waits for every goroutine
// section to be parsed and acknowledged.
var CollectTimeout = 5 * time.Second

// A StackTraceForm is the per-goroutine collection slot: the raw
// section handed to a parse worker, the stack the worker fills in,
// and the shared ack channel.  Forms are created and owned by
// Collect; workers borrow a form, write its Stack, and ack exactly
// once.  A form is frozen once its ack is received.
type StackTraceForm struct {
	section []byte
	Stack   *ThreadStack
	ackCh   chan<- struct{}
}

// Test/diagnostic hook invoked by a worker before it fills a form.
var handleFormHook func(*StackTraceForm)

// Collect snapshots every live goroutine's stack and returns the
// stacks grouped by identical code path, one Result per group.  The
// operation is all-or-nothing: if any section is not acknowledged
// within CollectTimeout, Collect returns an error and no results.
func Collect() ([]Result, error) {
	startTime := time.Now()
	atomic.AddUint64(&collectorStats.TotCollect, 1)

	selfGID := CurrentGoroutineID()

	text := captureAllStacks()
	records := captureProfileRecords()
	if records == nil {
		log.Warnf("collector: goroutine profile never settled," +
			" frame addresses will be unavailable")
	}

	sections, dropped := splitSections(text)
	if dropped > 0 {
		log.Warnf("collector: dropped %d malformed sections"+
			" from stack dump", dropped)
		atomic.AddUint64(&collectorStats.TotFormsFailed, uint64(dropped))
	}
	if len(sections) <= 0 {
		atomic.AddUint64(&collectorStats.TotCollectErr, 1)
		return nil, fmt.Errorf("collector: no goroutine sections" +
			" in stack dump")
	}

	// Scatter one form per goroutine section to the parse workers.
	// The ack channel is buffered so a worker's ack never blocks,
	// even after Collect has already given up and returned.
	ackCh := make(chan struct{}, len(sections))
	workCh := make(chan *StackTraceForm, len(sections))

	forms := make([]*StackTraceForm, 0, len(sections))
	for _, section := range sections {
		form := &StackTraceForm{section: section, ackCh: ackCh}
		forms = append(forms, form)
		workCh <- form
	}
	close(workCh)

	atomic.AddUint64(&collectorStats.TotFormsScattered, uint64(len(forms)))

	for i := 0; i < getWorkerCount(len(forms)); i++ {
		go func() {
			for form := range workCh {
				handleForm(form)
			}
		}()
	}

	// Gather acks with a bounded wait; the one-shot timer is the
	// only deadline.
	timer := time.NewTimer(CollectTimeout)
	defer timer.Stop()

	acks := 0
	for acks < len(forms) {
		select {
		case <-ackCh:
			acks++
			atomic.AddUint64(&collectorStats.TotAcks, 1)
		case <-timer.C:
			atomic.AddUint64(&collectorStats.TotCollectTimeout, 1)
			return nil, fmt.Errorf("collector: timed out waiting"+
				" for acks. Got only %d of %d", acks, len(forms))
		}
	}

	// Every form is acked and frozen; attach frame addresses from
	// the profile snapshot and group.
	idx := buildAddrIndex(records)

	stacks := make([]*ThreadStack, 0, len(forms))
	for _, form := range forms {
		if form.Stack == nil {
			continue
		}
		if form.Stack.ID == selfGID {
			// The collector's own two snapshots never agree, since
			// they were taken from different call sites; recapture
			// directly for real addresses.
			cur := CaptureCurrent(0)
			cur.ID = form.Stack.ID
			cur.State = form.Stack.State
			cur.CreatedBy = form.Stack.CreatedBy
			form.Stack = cur
		} else {
			idx.attachAddrs(form.Stack)
		}
		stacks = append(stacks, form.Stack)
	}

	rv := groupStacks(stacks)

	collectorStats.TimerCollect.UpdateSince(startTime)

	return rv, nil
}

// handleForm parses a form's goroutine section.  A worker always
// acks, even when the parse fails and the form carries no stack,
// mirroring how a partial unwind still completes its slot.
func handleForm(form *StackTraceForm) {
	if handleFormHook != nil {
		handleFormHook(form)
	}

	stack, err := parseSection(form.section)
	if err != nil {
		log.Errorf("collector: dropping goroutine section, err: %v", err)
		atomic.AddUint64(&collectorStats.TotFormsFailed, 1)
	} else {
		form.Stack = stack
	}

	form.ackCh <- struct{}{}
}

func getWorkerCount(itemCount int) int {
	ncpu := runtime.NumCPU()
	if itemCount < ncpu {
		return itemCount
	}
	return ncpu
}
