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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	log "github.com/couchbase/clog"

	"github.com/couchbase/threadstacks"
)

var StartTime = time.Now()

// Time in seconds after a client can retry a request that received an
// error response.
var RetryAfter = "30"

func isRetryableError(code int) bool {
	if code >= http.StatusInternalServerError {
		return true
	}
	return false
}

func ShowError(w http.ResponseWriter, req *http.Request,
	msg string, code int) {
	log.Errorf("rest: error code: %d, msg: %s", code, msg)
	PropagateError(w, msg, code)
}

func PropagateError(w http.ResponseWriter, msg string, code int) {
	if isRetryableError(code) {
		w.Header().Set("Retry-After", RetryAfter)
	}

	details := map[string]interface{}{
		"status": "fail",
		"error":  msg,
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		http.Error(w, msg, code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	fmt.Fprintln(w, string(detailsJSON))
}

func MustEncode(w io.Writer, i interface{}) {
	rw, rwOk := w.(http.ResponseWriter)
	if rwOk {
		h := rw.Header()
		if h != nil {
			h.Set("Cache-Control", "no-cache")
			if h.Get("Content-Type") == "" {
				h.Set("Content-Type", "application/json")
			}
		}
	}

	err := json.NewEncoder(w).Encode(i)
	if err != nil && rwOk {
		PropagateError(rw, fmt.Sprintf("rest: JSON encode, err: %v", err),
			http.StatusInternalServerError)
	}
}

// NewRESTRouter creates a mux.Router with the stack dump REST API
// routes.
func NewRESTRouter(versionMain string,
	ring *threadstacks.ReportRing) *mux.Router {
	r := mux.NewRouter()
	r.StrictSlash(true)

	r.Handle("/api/stacks",
		NewStacksHandler()).Methods("GET")
	r.Handle("/api/stacks/raw",
		http.HandlerFunc(RESTGetStacksRaw)).Methods("GET")
	r.Handle("/api/stacks/dump",
		NewDumpPostHandler()).Methods("POST")
	r.Handle("/api/reports",
		NewReportsHandler(ring)).Methods("GET")
	r.Handle("/api/stats",
		http.HandlerFunc(RESTGetStats)).Methods("GET")
	r.Handle("/api/runtime",
		NewRuntimeGetHandler(versionMain)).Methods("GET")

	return r
}
