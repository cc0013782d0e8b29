package main

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/iafilius/MPEViewer/src/controller"
)

// toastTimeout is how long success and error messages stay visible.
const toastTimeout = 3 * time.Second

// statusBar shows controller notifications at the bottom of the window. Info
// messages stay with a spinner until dismissed; the others fade after
// toastTimeout.
type statusBar struct {
	label    *widget.Label
	progress *widget.ProgressBarInfinite

	mu  sync.Mutex
	seq int
}

var _ controller.Notifier = (*statusBar)(nil)

func newStatusBar() *statusBar {
	s := &statusBar{
		label:    widget.NewLabel(""),
		progress: widget.NewProgressBarInfinite(),
	}
	s.progress.Hide()
	s.progress.Stop()
	return s
}

func (s *statusBar) object() fyne.CanvasObject {
	return container.NewBorder(nil, nil, nil, s.progress, s.label)
}

// next invalidates pending fades.
func (s *statusBar) next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *statusBar) show(msg string, imp widget.Importance, persistent bool) {
	id := s.next()
	fyne.Do(func() {
		s.label.Importance = imp
		s.label.SetText(msg)
		if persistent {
			s.progress.Show()
			s.progress.Start()
		}
	})
	if persistent {
		return
	}
	time.AfterFunc(toastTimeout, func() {
		s.mu.Lock()
		stale := s.seq != id
		s.mu.Unlock()
		if stale {
			return
		}
		fyne.Do(func() { s.label.SetText("") })
	})
}

func (s *statusBar) Info(msg string)    { s.show(msg, widget.MediumImportance, true) }
func (s *statusBar) Success(msg string) { s.show(msg, widget.SuccessImportance, false) }
func (s *statusBar) Error(msg string)   { s.show(msg, widget.DangerImportance, false) }

func (s *statusBar) Dismiss() {
	s.next()
	fyne.Do(func() {
		s.progress.Stop()
		s.progress.Hide()
		s.label.SetText("")
	})
}
