package persist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/nhle/twodo/internal/tables"
)

// autoSaver listens to a store and hands every change to save on a
// single background goroutine, in order.
type autoSaver struct {
	store   *tables.Store
	logger  *zap.Logger
	opts    options
	save    func(ctx context.Context, c tables.Change) error
	loading atomic.Bool

	mu         sync.Mutex
	running    bool
	listenerID int
	changes    chan tables.Change
	quit       chan struct{}
	done       chan struct{}
}

func newAutoSaver(
	s *tables.Store,
	logger *zap.Logger,
	opts options,
	save func(ctx context.Context, c tables.Change) error,
) *autoSaver {
	return &autoSaver{
		store:  s,
		logger: logger,
		opts:   opts,
		save:   save,
	}
}

func (a *autoSaver) start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return errors.New("auto-save already running")
	}

	changes := make(chan tables.Change, a.opts.queueLen)
	quit := make(chan struct{})
	done := make(chan struct{})

	a.listenerID = a.store.AddTablesListener(func(c tables.Change) {
		if a.loading.Load() {
			return
		}
		select {
		case changes <- c:
		case <-quit:
		case <-ctx.Done():
		}
	})
	a.changes, a.quit, a.done = changes, quit, done
	a.running = true

	go a.run(ctx, changes, quit, done)
	a.logger.Debug("auto-save started")
	return nil
}

func (a *autoSaver) run(ctx context.Context, changes <-chan tables.Change, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case c := <-changes:
			a.write(ctx, c)
		case <-quit:
			a.drain(ctx, changes)
			return
		case <-ctx.Done():
			a.drain(context.WithoutCancel(ctx), changes)
			return
		}
	}
}

// drain writes changes that were queued before the saver stopped.
func (a *autoSaver) drain(ctx context.Context, changes <-chan tables.Change) {
	for {
		select {
		case c := <-changes:
			a.write(ctx, c)
		default:
			return
		}
	}
}

func (a *autoSaver) write(ctx context.Context, c tables.Change) {
	if err := a.save(ctx, c); err != nil {
		a.report(err)
		return
	}
	a.logger.Debug("auto-saved change", zap.Strings("tables", c.TableIDs()))
}

func (a *autoSaver) report(err error) {
	a.logger.Error("persist error", zap.Error(err))
	if a.opts.onError != nil {
		a.opts.onError(err)
	}
}

func (a *autoSaver) stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	a.store.DelListener(a.listenerID)
	close(a.quit)
	done := a.done
	a.mu.Unlock()

	<-done
	a.logger.Debug("auto-save stopped")
}

// withoutSaving runs fn with change forwarding suspended, so content
// being loaded from the backend is not written straight back.
func (a *autoSaver) withoutSaving(fn func()) {
	a.loading.Store(true)
	defer a.loading.Store(false)
	fn()
}
