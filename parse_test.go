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

var sampleDump = []byte(`goroutine 1 [running]:
main.main()
	/tmp/x.go:30 +0x1d

goroutine 18 [chan receive, 5 minutes]:
main.worker(0x2)
	/tmp/x.go:12 +0x2c
main.spawn(0x2)
	/tmp/x.go:8 +0x19
created by main.main in goroutine 1
	/tmp/x.go:20 +0x45

not a goroutine section
some trailing junk
`)

func TestSplitSections(t *testing.T) {
	sections, dropped := splitSections(sampleDump)
	if len(sections) != 2 {
		t.Errorf("expected 2 sections, got: %d", len(sections))
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped section, got: %d", dropped)
	}

	sections, dropped = splitSections(nil)
	if len(sections) != 0 || dropped != 0 {
		t.Errorf("expected empty input to yield nothing")
	}
}

func TestParseSection(t *testing.T) {
	sections, _ := splitSections(sampleDump)

	s, err := parseSection(sections[0])
	if err != nil {
		t.Errorf("expected parse to work, err: %v", err)
	}
	if s.ID != 1 || s.State != "running" {
		t.Errorf("expected goroutine 1 running, got: %d %q",
			s.ID, s.State)
	}
	if s.Depth != 1 || s.Frames()[0].Function != "main.main" {
		t.Errorf("expected 1 frame of main.main, got: %+v", s.Frames())
	}
	if s.Frames()[0].File != "/tmp/x.go" || s.Frames()[0].Line != 30 {
		t.Errorf("expected location /tmp/x.go:30, got: %s:%d",
			s.Frames()[0].File, s.Frames()[0].Line)
	}

	s, err = parseSection(sections[1])
	if err != nil {
		t.Errorf("expected parse to work, err: %v", err)
	}
	if s.ID != 18 {
		t.Errorf("expected goroutine 18, got: %d", s.ID)
	}
	if s.State != "chan receive" {
		t.Errorf("expected wait duration stripped from state,"+
			" got: %q", s.State)
	}
	if s.Depth != 2 {
		t.Errorf("expected 2 frames, got: %d", s.Depth)
	}
	if s.Frames()[0].Function != "main.worker" ||
		s.Frames()[1].Function != "main.spawn" {
		t.Errorf("expected worker then spawn, got: %+v", s.Frames())
	}
	if s.CreatedBy != "main.main" {
		t.Errorf("expected createdBy main.main, got: %q", s.CreatedBy)
	}
}

func TestParseSectionErrors(t *testing.T) {
	tests := []string{
		"",
		"goroutine x [running]:\nmain.main()\n\t/tmp/x.go:1 +0x1",
		"goroutine 1 running:\nmain.main()\n\t/tmp/x.go:1 +0x1",
		"goroutine 1 [running:\nmain.main()\n\t/tmp/x.go:1 +0x1",
		"goroutine 1 [running]:",
		"nope 1 [running]:\nmain.main()",
	}

	for i, test := range tests {
		s, err := parseSection([]byte(test))
		if err == nil || s != nil {
			t.Errorf("test: %d, expected parse to fail on: %q", i, test)
		}
	}
}

func TestParseGoStackHeader(t *testing.T) {
	tests := []struct {
		line  string
		id    int64
		state string
		ok    bool
	}{
		{"goroutine 1 [running]:", 1, "running", true},
		{"goroutine 42 [IO wait]:", 42, "IO wait", true},
		{"goroutine 7 [chan receive, 10 minutes]:", 7,
			"chan receive", true},
		{"goroutine [running]:", 0, "", false},
		{"goroutine abc [running]:", 0, "", false},
		{"main.main()", 0, "", false},
	}

	for i, test := range tests {
		id, state, err := parseGoStackHeader(test.line)
		if test.ok {
			if err != nil {
				t.Errorf("test: %d, expected parse to work, err: %v",
					i, err)
			}
			if id != test.id || state != test.state {
				t.Errorf("test: %d, expected %d %q, got: %d %q",
					i, test.id, test.state, id, state)
			}
		} else if err == nil {
			t.Errorf("test: %d, expected parse to fail on: %q",
				i, test.line)
		}
	}
}

func TestFuncNameFromLine(t *testing.T) {
	tests := []struct {
		line     string
		expected string
	}{
		{"main.worker(0x2)", "main.worker"},
		{"main.worker(0x0?, {0x4f2a10, 0x2})", "main.worker"},
		{"runtime.gopark", "runtime.gopark"},
		{"  main.spawn(0x2)", "main.spawn"},
	}

	for i, test := range tests {
		actual := funcNameFromLine(test.line)
		if actual != test.expected {
			t.Errorf("test: %d, expected: %q, got: %q",
				i, test.expected, actual)
		}
	}
}

func TestParseLocationLine(t *testing.T) {
	tests := []struct {
		line string
		file string
		num  int
	}{
		{"\t/tmp/x.go:23 +0x2c", "/tmp/x.go", 23},
		{"\t/tmp/x.go:23", "/tmp/x.go", 23},
		{"\t/tmp/x.go", "/tmp/x.go", 0},
	}

	for i, test := range tests {
		file, num := parseLocationLine(test.line)
		if file != test.file || num != test.num {
			t.Errorf("test: %d, expected %s:%d, got: %s:%d",
				i, test.file, test.num, file, num)
		}
	}
}

func TestCurrentGoroutineID(t *testing.T) {
	id := CurrentGoroutineID()
	if id <= 0 {
		t.Errorf("expected positive goroutine id, got: %d", id)
	}

	otherCh := make(chan int64)
	go func() {
		otherCh <- CurrentGoroutineID()
	}()
	other := <-otherCh
	if other <= 0 || other == id {
		t.Errorf("expected a different positive id, got: %d vs %d",
			id, other)
	}
}
