package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nhle/twodo/internal/model"
	"github.com/nhle/twodo/tests/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWaitForChange(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	w := New(s)
	defer w.Stop()

	_, err := s.AddTodo(model.Todo{Title: "Water plants"})
	require.NoError(t, err)

	msg := w.WaitForChange()()
	assert.Equal(t, ChangedMsg{}, msg)

	st := w.Status()
	assert.Equal(t, StateChanged, st.State)
	assert.Equal(t, 1, st.Changes)
}

func TestReportError(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	w := New(s)
	defer w.Stop()

	boom := errors.New("disk full")
	w.ReportError(boom)
	w.ReportError(nil)

	msg := w.WaitForError()()
	require.IsType(t, ErrorMsg{}, msg)
	assert.ErrorIs(t, msg.(ErrorMsg).Err, boom)
	assert.Equal(t, StateError, w.Status().State)

	w.ClearError()
	assert.Equal(t, StateChanged, w.Status().State)
	assert.NoError(t, w.Status().LastError)
}

func TestStopReleasesWaiters(t *testing.T) {
	s, _ := testutil.NewTestStore(t)
	w := New(s)

	done := make(chan any, 2)
	go func() { done <- w.WaitForChange()() }()
	go func() { done <- w.WaitForError()() }()

	w.Stop()
	w.Stop()
	assert.Nil(t, <-done)
	assert.Nil(t, <-done)

	_, err := s.AddTodo(model.Todo{Title: "after stop"})
	require.NoError(t, err)
}
