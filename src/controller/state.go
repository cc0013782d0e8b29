package controller

import (
	"errors"
	"fmt"
)

// State is the page phase.
type State int

const (
	Idle State = iota
	FileSelected
	Uploading
	Uploaded
	Fetching
	Rendered
	Exporting
)

var stateNames = [...]string{"idle", "file-selected", "uploading", "uploaded", "fetching", "rendered", "exporting"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Event is a user action or the completion of one.
type Event int

const (
	SelectDegree Event = iota
	SelectFile
	UploadStart
	UploadOK
	UploadFail
	FetchStart
	FetchOK
	FetchFail
	ExportStart
	ExportDone
)

var eventNames = [...]string{"select-degree", "select-file", "upload-start", "upload-ok", "upload-fail", "fetch-start", "fetch-ok", "fetch-fail", "export-start", "export-done"}

func (e Event) String() string {
	if e >= 0 && int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// ErrInvalidTransition is returned when an event is not allowed in the
// current state, e.g. a second export while one is running.
var ErrInvalidTransition = errors.New("invalid transition")

type edge struct {
	from State
	on   Event
}

var transitions = map[edge]State{
	{Idle, SelectDegree}:         Idle,
	{FileSelected, SelectDegree}: Idle,
	{Uploaded, SelectDegree}:     Idle,
	{Rendered, SelectDegree}:     Idle,

	{Idle, SelectFile}:         FileSelected,
	{FileSelected, SelectFile}: FileSelected,
	{Uploaded, SelectFile}:     FileSelected,
	{Rendered, SelectFile}:     FileSelected,

	{FileSelected, UploadStart}: Uploading,
	{Uploaded, UploadStart}:     Uploading,
	{Rendered, UploadStart}:     Uploading,
	{Uploading, UploadOK}:       Uploaded,
	{Uploading, UploadFail}:     FileSelected,

	{Uploaded, FetchStart}: Fetching,
	{Rendered, FetchStart}: Fetching,
	{Fetching, FetchOK}:    Rendered,
	{Fetching, FetchFail}:  Uploaded,

	{Rendered, ExportStart}:  Exporting,
	{Exporting, ExportDone}: Rendered,
}

// Transition returns the state after e, or ErrInvalidTransition.
func Transition(s State, e Event) (State, error) {
	next, ok := transitions[edge{s, e}]
	if !ok {
		return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, e, s)
	}
	return next, nil
}

// Allowed reports whether e may fire in s.
func Allowed(s State, e Event) bool {
	_, ok := transitions[edge{s, e}]
	return ok
}
