// Package sync bridges store change notifications and background
// persistence errors into Bubble Tea messages.
package sync

import (
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/twodo/internal/store"
)

// State is the persistence state shown in the header.
type State int

const (
	StateIdle State = iota
	StateChanged
	StateError
)

// Status is a snapshot of what the watcher has seen.
type Status struct {
	State      State
	LastChange time.Time
	LastError  error
	Changes    int
}

// ChangedMsg is a tea.Msg sent after the store changed.
type ChangedMsg struct{}

// ErrorMsg is a tea.Msg sent when a background save or reload failed.
type ErrorMsg struct {
	Err error
}

// Watcher turns store notifications and persister errors into messages.
// Each message must be followed by a call to the matching Wait method to
// keep listening.
type Watcher struct {
	changes <-chan struct{}
	cancel  func()
	errCh   chan error
	stopCh  chan struct{}
	now     func() time.Time

	mu      gosync.Mutex
	status  Status
	stopped bool
}

// New subscribes to every table of s.
func New(s *store.Store) *Watcher {
	changes, cancel := s.Subscribe()
	return &Watcher{
		changes: changes,
		cancel:  cancel,
		errCh:   make(chan error, 16),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}
}

// Start returns the commands that wait for the first change and error.
func (w *Watcher) Start() tea.Cmd {
	return tea.Batch(w.WaitForChange(), w.WaitForError())
}

// ReportError records err and forwards it to the UI without blocking.
// It has the signature expected by persist.WithErrorHandler.
func (w *Watcher) ReportError(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	w.status.State = StateError
	w.status.LastError = err
	w.mu.Unlock()

	select {
	case w.errCh <- err:
	default:
		// Channel full; the status still carries the latest error
	}
}

// WaitForChange returns a tea.Cmd that blocks until the store changes.
func (w *Watcher) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.changes:
		case <-w.stopCh:
			return nil
		}

		w.mu.Lock()
		w.status.Changes++
		w.status.LastChange = w.now()
		if w.status.State != StateError {
			w.status.State = StateChanged
		}
		w.mu.Unlock()
		return ChangedMsg{}
	}
}

// WaitForError returns a tea.Cmd that blocks until an error is reported.
func (w *Watcher) WaitForError() tea.Cmd {
	return func() tea.Msg {
		select {
		case err := <-w.errCh:
			return ErrorMsg{Err: err}
		case <-w.stopCh:
			return nil
		}
	}
}

// ClearError resets the error state once the user has seen it.
func (w *Watcher) ClearError() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.status.State == StateError {
		w.status.State = StateChanged
		w.status.LastError = nil
	}
}

// Status returns the current status.
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Stop unsubscribes from the store and releases pending commands.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true
	w.cancel()
	close(w.stopCh)
}
