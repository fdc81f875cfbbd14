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
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/couchbase/clog"
)

// ReportBannerStart and ReportBannerEnd frame each report written to
// stderr, so that dumps can be carved back out of interleaved process
// output.
var (
	ReportBannerStart = "---------- begin thread stacks ----------"
	ReportBannerEnd   = "----------  end thread stacks  ----------"
)

// DumpReports retains the most recent dump reports, for inspection
// over REST.
var DumpReports *ReportRing

func init() {
	DumpReports, _ = NewReportRing(DefaultReportRingSize)
}

// externalHandlerState is the process-wide request service singleton,
// initialized at most once.
type externalHandlerState struct {
	serverPID int
	serverCh  chan os.Signal
}

var handlerStateM sync.Mutex
var handlerState *externalHandlerState

// startRequestService lazily starts the singleton goroutine that
// serves dump requests.  The second return value reports whether this
// call performed the initialization.
func startRequestService() (*externalHandlerState, bool) {
	handlerStateM.Lock()
	defer handlerStateM.Unlock()

	if handlerState != nil {
		return handlerState, false
	}

	state := &externalHandlerState{serverPID: os.Getpid()}

	readyCh := make(chan chan os.Signal)
	go requestServiceLoop(state.serverPID, readyCh)
	state.serverCh = <-readyCh

	handlerState = state
	return handlerState, true
}

func requestServiceLoop(serverPID int, readyCh chan chan os.Signal) {
	reqCh := make(chan os.Signal, 8)
	readyCh <- reqCh

	for sig := range reqCh {
		// A forked child inherits signal registrations; it must
		// not answer requests meant for the parent.
		if os.Getpid() != serverPID {
			log.Warnf("service: dump request in forked child"+
				" ignored, sig: %v", sig)
			continue
		}
		serveDumpRequest(sig)
	}
}

func serveDumpRequest(sig os.Signal) {
	atomic.AddUint64(&collectorStats.TotDumpRequests, 1)

	trigger := "internal"
	if sig == ExternalSignum() {
		trigger = "external"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", ReportBannerStart)
	fmt.Fprintf(&buf, "time: %s, pid: %d, trigger: %s\n\n",
		time.Now().Format(time.RFC3339), os.Getpid(), trigger)

	results, err := Collect()
	if err != nil {
		atomic.AddUint64(&collectorStats.TotDumpRequestsErr, 1)
		fmt.Fprintf(&buf, "collect failed: %s\n", err)
	} else {
		buf.WriteString(ToPrettyString(results))
	}

	fmt.Fprintf(&buf, "%s\n", ReportBannerEnd)

	if trigger == "external" {
		err = stderrWrite(buf.Bytes())
		if err != nil {
			atomic.AddUint64(&collectorStats.TotDumpRequestsErr, 1)
			log.Errorf("service: stderr write failed, err: %v", err)
		}
	} else {
		log.Printf("service: dump collected, trigger: %s,"+
			" bytes: %d", trigger, buf.Len())
	}

	DumpReports.Add(trigger, buf.Bytes())
}

// InstallInternalHandler registers the internal dump signal, starting
// the request service if needed.  Safe to call more than once; the
// return value reports whether this call started the service.
func InstallInternalHandler() bool {
	state, started := startRequestService()
	signal.Notify(state.serverCh, InternalSignum())
	return started
}

// InstallExternalHandler registers the external dump signal, letting
// foreign processes demand a stack dump on this process's stderr.
func InstallExternalHandler() bool {
	state, started := startRequestService()
	signal.Notify(state.serverCh, ExternalSignum())
	return started
}
