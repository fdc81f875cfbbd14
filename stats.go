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
	"io"
	"sync/atomic"

	"github.com/rcrowley/go-metrics"
)

// CollectorStats tracks the work of Collect and of the dump request
// service.  The TotXxx fields are accessed via sync/atomic.
type CollectorStats struct {
	TotCollect         uint64
	TotCollectErr      uint64
	TotCollectTimeout  uint64
	TotFormsScattered  uint64
	TotFormsFailed     uint64
	TotAcks            uint64
	TotDumpRequests    uint64
	TotDumpRequestsErr uint64

	TimerCollect metrics.Timer
}

var collectorStats = &CollectorStats{
	TimerCollect: metrics.NewTimer(),
}

// Stats returns the process-wide collector stats.
func Stats() *CollectorStats {
	return collectorStats
}

func (s *CollectorStats) WriteJSON(w io.Writer) {
	fmt.Fprintf(w, `{"TotCollect":%d`, atomic.LoadUint64(&s.TotCollect))
	fmt.Fprintf(w, `,"TotCollectErr":%d`, atomic.LoadUint64(&s.TotCollectErr))
	fmt.Fprintf(w, `,"TotCollectTimeout":%d`,
		atomic.LoadUint64(&s.TotCollectTimeout))
	fmt.Fprintf(w, `,"TotFormsScattered":%d`,
		atomic.LoadUint64(&s.TotFormsScattered))
	fmt.Fprintf(w, `,"TotFormsFailed":%d`,
		atomic.LoadUint64(&s.TotFormsFailed))
	fmt.Fprintf(w, `,"TotAcks":%d`, atomic.LoadUint64(&s.TotAcks))
	fmt.Fprintf(w, `,"TotDumpRequests":%d`,
		atomic.LoadUint64(&s.TotDumpRequests))
	fmt.Fprintf(w, `,"TotDumpRequestsErr":%d`,
		atomic.LoadUint64(&s.TotDumpRequestsErr))

	w.Write([]byte(`,"TimerCollect":`))
	WriteTimerJSON(w, s.TimerCollect)

	w.Write(JsonCloseBrace)
}
