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

package rest

import (
	"fmt"
	"net/http"
	"runtime"
	"runtime/pprof"

	"github.com/couchbase/threadstacks"
)

// StacksHandler collects the stacks of all threads and returns the
// deduplicated results as JSON.
type StacksHandler struct{}

func NewStacksHandler() *StacksHandler {
	return &StacksHandler{}
}

func (h *StacksHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	results, err := threadstacks.Collect()
	if err != nil {
		ShowError(w, req, fmt.Sprintf("rest_dump: collect,"+
			" err: %v", err), http.StatusInternalServerError)
		return
	}

	pretty := req.URL.Query().Get("pretty") != ""
	if pretty {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(threadstacks.ToPrettyString(results)))
		return
	}

	MustEncode(w, map[string]interface{}{
		"status":  "ok",
		"results": results,
	})
}

// RESTGetStacksRaw writes the runtime's own textual goroutine dump,
// undeduplicated, as a companion to the grouped collector view.
func RESTGetStacksRaw(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	pprof.Lookup("goroutine").WriteTo(w, 2)
}

// DumpPostHandler asks the in-process request service for a dump, the
// same way a signal from a foreign process would.
type DumpPostHandler struct{}

func NewDumpPostHandler() *DumpPostHandler {
	return &DumpPostHandler{}
}

func (h *DumpPostHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	sig := threadstacks.InternalSignum()
	if req.FormValue("external") == "true" {
		sig = threadstacks.ExternalSignum()
	}

	err := threadstacks.RequestDump(sig)
	if err != nil {
		ShowError(w, req, fmt.Sprintf("rest_dump: requestDump,"+
			" err: %v", err), http.StatusInternalServerError)
		return
	}

	MustEncode(w, map[string]interface{}{"status": "ok"})
}

// ReportsHandler returns the recent dump reports retained by the
// report ring.
type ReportsHandler struct {
	ring *threadstacks.ReportRing
}

func NewReportsHandler(ring *threadstacks.ReportRing) *ReportsHandler {
	return &ReportsHandler{ring: ring}
}

func (h *ReportsHandler) ServeHTTP(
	w http.ResponseWriter, req *http.Request) {
	ring := h.ring
	if ring == nil {
		ring = threadstacks.DumpReports
	}

	MustEncode(w, map[string]interface{}{
		"status":  "ok",
		"reports": ring.Reports(),
	})
}

// RESTGetStats writes the collector stats as JSON.
func RESTGetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	threadstacks.Stats().WriteJSON(w)
}

// RuntimeGetHandler is a REST handler for the runtime GET endpoint.
type RuntimeGetHandler struct {
	versionMain string
}

func NewRuntimeGetHandler(versionMain string) *RuntimeGetHandler {
	return &RuntimeGetHandler{versionMain: versionMain}
}

func (h *RuntimeGetHandler) ServeHTTP(
	w http.ResponseWriter, r *http.Request) {
	MustEncode(w, map[string]interface{}{
		"versionMain":  h.versionMain,
		"versionData":  threadstacks.VERSION,
		"arch":         runtime.GOARCH,
		"os":           runtime.GOOS,
		"numCPU":       runtime.NumCPU(),
		"numGoroutine": runtime.NumGoroutine(),
		"startTime":    StartTime,
		"go": map[string]interface{}{
			"GOMAXPROCS": runtime.GOMAXPROCS(0),
			"GOROOT":     runtime.GOROOT(),
			"version":    runtime.Version(),
			"compiler":   runtime.Compiler,
		},
	})
}
