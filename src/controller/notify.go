package controller

import (
	"sync"

	"github.com/iafilius/MPEViewer/src/logging"
)

// Notifier shows transient user messages.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
	// Dismiss removes persistent messages such as export progress.
	Dismiss()
}

// LogNotifier writes notifications to the log. Used by the CLI.
type LogNotifier struct{}

func (LogNotifier) Info(msg string)    { logging.Infof("%s", msg) }
func (LogNotifier) Success(msg string) { logging.Infof("%s", msg) }
func (LogNotifier) Error(msg string)   { logging.Errorf("%s", msg) }
func (LogNotifier) Dismiss()           {}

// Note is one recorded notification.
type Note struct {
	Kind string // info, success, error, dismiss
	Msg  string
}

// Recorder keeps notifications in order, for tests and for replaying them in
// a status line.
type Recorder struct {
	mu    sync.Mutex
	notes []Note
}

func (r *Recorder) add(kind, msg string) {
	r.mu.Lock()
	r.notes = append(r.notes, Note{Kind: kind, Msg: msg})
	r.mu.Unlock()
}

func (r *Recorder) Info(msg string)    { r.add("info", msg) }
func (r *Recorder) Success(msg string) { r.add("success", msg) }
func (r *Recorder) Error(msg string)   { r.add("error", msg) }
func (r *Recorder) Dismiss()           { r.add("dismiss", "") }

// Notes returns a copy of what was recorded.
func (r *Recorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Note, len(r.notes))
	copy(out, r.notes)
	return out
}

// Last returns the latest note, or the zero Note.
func (r *Recorder) Last() Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Note{}
	}
	return r.notes[len(r.notes)-1]
}
