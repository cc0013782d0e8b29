package controller

import (
	"errors"
	"testing"
)

func TestTransition_Table(t *testing.T) {
	cases := []struct {
		from State
		on   Event
		want State
		ok   bool
	}{
		{Idle, SelectFile, FileSelected, true},
		{Idle, UploadStart, Idle, false},
		{Idle, FetchStart, Idle, false},
		{FileSelected, UploadStart, Uploading, true},
		{Uploading, UploadOK, Uploaded, true},
		{Uploading, UploadFail, FileSelected, true},
		{Uploading, SelectFile, Uploading, false},
		{Uploading, SelectDegree, Uploading, false},
		{Uploaded, FetchStart, Fetching, true},
		{Fetching, FetchOK, Rendered, true},
		{Fetching, FetchFail, Uploaded, true},
		{Fetching, FetchStart, Fetching, false},
		{Rendered, FetchStart, Fetching, true},
		{Rendered, ExportStart, Exporting, true},
		{Uploaded, ExportStart, Uploaded, false},
		{Exporting, ExportStart, Exporting, false},
		{Exporting, UploadStart, Exporting, false},
		{Exporting, FetchStart, Exporting, false},
		{Exporting, SelectDegree, Exporting, false},
		{Exporting, ExportDone, Rendered, true},
		{Rendered, SelectDegree, Idle, true},
		{Rendered, SelectFile, FileSelected, true},
		{Rendered, UploadStart, Uploading, true},
	}
	for _, c := range cases {
		got, err := Transition(c.from, c.on)
		if c.ok {
			if err != nil || got != c.want {
				t.Fatalf("%s on %s => %s, %v want %s", c.on, c.from, got, err, c.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s on %s should be rejected, got %s, %v", c.on, c.from, got, err)
		}
		if got != c.from {
			t.Fatalf("rejected transition changed state %s -> %s", c.from, got)
		}
	}
}

func TestStateAndEventNames(t *testing.T) {
	if Exporting.String() != "exporting" || State(42).String() != "state(42)" {
		t.Fatalf("state names: %s %s", Exporting, State(42))
	}
	if UploadFail.String() != "upload-fail" || Event(-1).String() != "event(-1)" {
		t.Fatalf("event names: %s %s", UploadFail, Event(-1))
	}
}
