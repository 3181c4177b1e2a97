package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/nhle/twodo/internal/tables"
)

// document is the on-disk JSON layout of a FilePersister.
type document struct {
	Tables tables.Tables `json:"tables"`
}

// FilePersister keeps the whole store in a single JSON file. It can also
// watch the file and reload it when another process changes it.
type FilePersister struct {
	path   string
	store  *tables.Store
	logger *zap.Logger
	auto   *autoSaver

	mu          sync.Mutex
	lastWritten []byte

	watchMu sync.Mutex
	watcher *fsnotify.Watcher
	watchWg sync.WaitGroup
}

// NewFilePersister creates a persister for the JSON file at path. The
// file is not read until Load is called.
func NewFilePersister(path string, s *tables.Store, logger *zap.Logger, opts ...Option) (*FilePersister, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	p := &FilePersister{
		path:   path,
		store:  s,
		logger: logger.With(zap.String("backend", "file"), zap.String("path", path)),
	}
	p.auto = newAutoSaver(s, p.logger, buildOptions(opts), func(ctx context.Context, _ tables.Change) error {
		return p.Save(ctx)
	})
	return p, nil
}

// Describe implements Persister.
func (p *FilePersister) Describe() string {
	return "file: " + p.path
}

// Load implements Persister.
func (p *FilePersister) Load(_ context.Context) error {
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		p.logger.Info("no data file yet, keeping in-memory content")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", p.path, err)
	}
	return p.apply(data, true)
}

// apply replaces the store content with the document in data. On the
// initial load a document without rows leaves the in-memory content alone.
func (p *FilePersister) apply(data []byte, initial bool) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", p.path, err)
	}

	rows := 0
	for _, t := range doc.Tables {
		rows += len(t)
	}
	if rows == 0 && initial {
		p.logger.Info("data file empty, keeping in-memory content")
		return nil
	}

	p.mu.Lock()
	p.lastWritten = data
	p.mu.Unlock()

	p.auto.withoutSaving(func() {
		p.store.SetContent(doc.Tables)
	})
	p.logger.Info("loaded store", zap.Int("rows", rows))
	return nil
}

// Save implements Persister. The file is replaced atomically.
func (p *FilePersister) Save(_ context.Context) error {
	data, err := marshalDocument(p.store)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if bytes.Equal(data, p.lastWritten) {
		return nil
	}
	if err := writeFileAtomic(p.path, data); err != nil {
		return err
	}
	p.lastWritten = data
	return nil
}

// StartAutoSave implements Persister.
func (p *FilePersister) StartAutoSave(ctx context.Context) error {
	return p.auto.start(ctx)
}

// StopAutoSave implements Persister.
func (p *FilePersister) StopAutoSave() {
	p.auto.stop()
}

// StartAutoLoad watches the data file and reloads the store whenever
// its content changes on disk. Writes made by this persister are
// recognised and skipped.
func (p *FilePersister) StartAutoLoad(ctx context.Context) error {
	p.watchMu.Lock()
	defer p.watchMu.Unlock()

	if p.watcher != nil {
		return errors.New("auto-load already running")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	// Watch the directory: atomic renames replace the file's inode.
	if err := w.Add(filepath.Dir(p.path)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(p.path), err)
	}
	p.watcher = w

	p.watchWg.Add(1)
	go p.watch(ctx, w)
	p.logger.Debug("auto-load started")
	return nil
}

func (p *FilePersister) watch(ctx context.Context, w *fsnotify.Watcher) {
	defer p.watchWg.Done()

	target := filepath.Clean(p.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			p.reload()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			p.auto.report(fmt.Errorf("watching %s: %w", p.path, err))
		}
	}
}

func (p *FilePersister) reload() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			p.auto.report(fmt.Errorf("reading %s: %w", p.path, err))
		}
		return
	}

	p.mu.Lock()
	own := bytes.Equal(data, p.lastWritten)
	p.mu.Unlock()
	if own {
		return
	}

	if err := p.apply(data, false); err != nil {
		p.auto.report(err)
		return
	}
	p.logger.Info("reloaded after external change")
}

// StopAutoLoad stops watching the data file.
func (p *FilePersister) StopAutoLoad() {
	p.watchMu.Lock()
	w := p.watcher
	p.watcher = nil
	p.watchMu.Unlock()

	if w == nil {
		return
	}
	w.Close()
	p.watchWg.Wait()
	p.logger.Debug("auto-load stopped")
}

// Close implements Persister.
func (p *FilePersister) Close() error {
	p.StopAutoLoad()
	p.auto.stop()
	return nil
}

// ExportJSON writes the store content in the FilePersister format.
func ExportJSON(w io.Writer, s *tables.Store) error {
	data, err := marshalDocument(s)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

func marshalDocument(s *tables.Store) ([]byte, error) {
	data, err := json.MarshalIndent(document{Tables: s.GetContent()}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding store: %w", err)
	}
	return append(data, '\n'), nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
