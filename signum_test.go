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

func TestSignumReservations(t *testing.T) {
	if InternalSignum() == nil || ExternalSignum() == nil {
		t.Errorf("expected both reserved signals")
	}
	if InternalSignum() == ExternalSignum() {
		t.Errorf("expected distinct internal and external signals")
	}
}

func TestStderrWriteEmpty(t *testing.T) {
	if err := stderrWrite(nil); err != nil {
		t.Errorf("expected empty write to work, err: %v", err)
	}
}

type notASignal struct{}

func (notASignal) String() string { return "not-a-signal" }
func (notASignal) Signal()        {}

func TestRequestDumpBadSignal(t *testing.T) {
	if err := RequestDump(notASignal{}); err == nil {
		t.Errorf("expected a non-deliverable signal to fail")
	}
}
