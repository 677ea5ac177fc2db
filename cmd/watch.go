package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
	"github.com/finos/architecture-as-code-sub007/internal/logger"
	"github.com/finos/architecture-as-code-sub007/internal/metrics"
)

// WatchIO handles I/O for the watch command.
type WatchIO interface {
	ValidateIO
	// Watch reports paths among paths whose content may have changed. Events
	// are coalesced over debounce. The channel is closed when ctx ends.
	Watch(ctx context.Context, paths []string, debounce time.Duration) (<-chan string, error)
}

// NewWatchCmd creates the watch subcommand using os.Getwd for config lookup.
func NewWatchCmd(io WatchIO) *cobra.Command {
	return newWatchCmdWithGetCWD(io, os.Getwd)
}

func newWatchCmdWithGetCWD(io WatchIO, getwd func() (string, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "watch <document|glob>...",
		Short:        "Re-validate documents whenever they change",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			patternPath, _ := cmd.Flags().GetString("pattern")
			metricsFile, _ := cmd.Flags().GetString("metrics-file")

			s, err := newSession(cmd, getwd, logger.ComponentWatch)
			if err != nil {
				return err
			}
			files, err := expandArgs(io, args)
			if err != nil {
				return err
			}

			w := &docWatcher{
				s:           s,
				io:          io,
				files:       files,
				patternPath: patternPath,
				metricsFile: metricsFile,
				memo:        newContentMemo(),
				rec:         metrics.NewRecorder(),
				emit:        reportEmitter(cmd, s),
			}
			return w.run(cmd.Context())
		},
	}

	cmd.Flags().String("pattern", "", "pattern document to apply; edits to it re-validate every document")
	cmd.Flags().Bool("json", false, "output one JSON report per line")
	cmd.Flags().String("metrics-file", "", "rewrite Prometheus metrics to this file after every pass")

	return cmd
}

// reportEmitter returns the output function for one report in the session's
// format.
func reportEmitter(cmd *cobra.Command, s *session) func(FileReport) {
	out := cmd.OutOrStdout()
	if s.outputFormat(cmd) == "json" {
		enc := json.NewEncoder(out)
		return func(r FileReport) { _ = enc.Encode(r) }
	}
	p := newPrinter(out, s.cfg.Output.Color)
	return p.report
}

// docWatcher re-validates documents as change notifications arrive. It is
// driven by a single goroutine.
type docWatcher struct {
	s           *session
	io          WatchIO
	files       []string
	patternPath string
	metricsFile string
	pattern     *calm.Pattern
	memo        *contentMemo
	rec         *metrics.Recorder
	emit        func(FileReport)
}

func (w *docWatcher) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	paths := append([]string(nil), w.files...)
	if w.patternPath != "" {
		data, err := w.io.ReadFile(w.patternPath)
		if err != nil {
			return fmt.Errorf("pattern %s: %w", w.patternPath, err)
		}
		w.memo.changed(w.patternPath, data)
		if err := w.reloadPattern(data); err != nil {
			return err
		}
		paths = append(paths, w.patternPath)
	}
	for _, f := range w.files {
		w.check(f, true)
	}
	w.flushMetrics()

	changes, err := w.io.Watch(ctx, paths, w.s.cfg.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("cannot watch files: %w", err)
	}
	w.s.log.Infow("watching", "files", len(paths), "debounce", w.s.cfg.Watch.Debounce)

	for {
		select {
		case <-ctx.Done():
			return nil
		case path, ok := <-changes:
			if !ok {
				return nil
			}
			w.changed(path)
			w.flushMetrics()
		}
	}
}

func (w *docWatcher) changed(path string) {
	if path != w.patternPath {
		w.check(path, false)
		return
	}
	data, err := w.io.ReadFile(path)
	if err != nil || !w.memo.changed(path, data) {
		return
	}
	if err := w.reloadPattern(data); err != nil {
		w.emit(failedFileReport(path, err))
		return
	}
	for _, f := range w.files {
		w.check(f, true)
	}
}

// reloadPattern replaces the active pattern. On failure the previous pattern
// stays in effect.
func (w *docWatcher) reloadPattern(data []byte) error {
	p, err := loadPattern(staticReader{w.patternPath: data}, w.patternPath)
	if err != nil {
		return fmt.Errorf("pattern %s: %w", w.patternPath, err)
	}
	w.pattern = p
	return nil
}

// check validates path unless its content is unchanged since the last pass.
// force skips the content comparison.
func (w *docWatcher) check(path string, force bool) {
	data, err := w.io.ReadFile(path)
	if err != nil {
		w.memo.forget(path)
		w.emit(failedFileReport(path, fmt.Errorf("cannot read %s: %w", path, err)))
		return
	}
	if !w.memo.changed(path, data) && !force {
		w.s.log.Debugw("content unchanged", "file", path)
		return
	}
	w.emit(w.s.validateFile(staticReader{path: data}, path, w.pattern, w.rec))
}

func (w *docWatcher) flushMetrics() {
	if w.metricsFile == "" {
		return
	}
	if err := w.io.WriteMetrics(w.metricsFile, w.rec); err != nil {
		w.s.log.Warnw("cannot write metrics", "file", w.metricsFile, "error", err)
	}
}

// staticReader serves file contents already in memory.
type staticReader map[string][]byte

func (r staticReader) ReadFile(path string) ([]byte, error) {
	data, ok := r[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

// contentMemo remembers a content hash per path.
type contentMemo struct {
	sums map[string]uint64
}

func newContentMemo() *contentMemo {
	return &contentMemo{sums: make(map[string]uint64)}
}

// changed records data for path and reports whether it differs from the
// previously recorded content.
func (m *contentMemo) changed(path string, data []byte) bool {
	sum := xxhash.Sum64(data)
	if old, ok := m.sums[path]; ok && old == sum {
		return false
	}
	m.sums[path] = sum
	return true
}

func (m *contentMemo) forget(path string) {
	delete(m.sums, path)
}

// fileWatchIO implements WatchIO using OS file I/O and fsnotify.
type fileWatchIO struct {
	fileValidateIO
}

// Watch starts an fsnotify watcher.
func (f fileWatchIO) Watch(ctx context.Context, paths []string, debounce time.Duration) (<-chan string, error) {
	return f.WatchImpl(ctx, paths, debounce)
}

// WatchImpl watches the parent directory of every path, since editors often
// replace a file by renaming over it, and forwards debounced events for the
// tracked paths only.
func (f fileWatchIO) WatchImpl(ctx context.Context, paths []string, debounce time.Duration) (<-chan string, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	tracked := make(map[string]string, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		tracked[abs] = p
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", d, err)
		}
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer fsw.Close()
		log := logger.For(logger.ComponentWatch)
		ticker := time.NewTicker(debounce)
		defer ticker.Stop()

		pending := make(map[string]bool)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				abs, _ := filepath.Abs(ev.Name)
				if p, ok := tracked[abs]; ok {
					pending[p] = true
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				log.Errorw("watcher error", "error", err)
			case <-ticker.C:
				for _, p := range paths {
					if !pending[p] {
						continue
					}
					delete(pending, p)
					select {
					case out <- p:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out, nil
}
