// Package watch observes a directory tree for newly arriving invoice
// documents and drives the processing pipeline, one event at a time.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"expensealert/internal/log"
)

// Pipeline states. Events are handled strictly one at a time: the
// pipeline is Idle between events, ProcessingEvent while the handler
// runs, and Stopped once shutdown has been requested. Stopped is
// terminal.
const (
	StateIdle int32 = iota
	StateProcessingEvent
	StateStopped
)

// Handler runs the pipeline body for one detected file.
type Handler interface {
	ProcessFile(ctx context.Context, path string) error
}

// Config controls the watch pipeline.
type Config struct {
	// Dir is the directory tree to observe. Must exist and be
	// traversable when Run is called.
	Dir string

	// Extension filters qualifying files, e.g. ".xml".
	Extension string

	// SettleDelay is the pause between detecting a creation and
	// reading the file, so a producer still writing it can finish.
	SettleDelay time.Duration

	// QueueSize bounds the number of accepted-but-unprocessed events.
	QueueSize int
}

// Pipeline watches one directory tree and feeds qualifying creation
// events through a single-consumer queue into the handler.
type Pipeline struct {
	cfg     Config
	handler Handler
	state   atomic.Int32
}

func NewPipeline(cfg Config, handler Handler) *Pipeline {
	if cfg.Extension == "" {
		cfg.Extension = ".xml"
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 64
	}
	return &Pipeline{cfg: cfg, handler: handler}
}

// State reports the pipeline's current lifecycle state.
func (p *Pipeline) State() int32 {
	return p.state.Load()
}

// Run observes the directory tree until ctx is cancelled. It returns
// only after the notification subscription is torn down and the
// consumer goroutine has exited; no background activity survives it.
// Errors local to one event are logged and never terminate the loop.
func (p *Pipeline) Run(ctx context.Context) error {
	info, err := os.Stat(p.cfg.Dir)
	if err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch directory: %s is not a directory", p.cfg.Dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	queue := make(chan string, p.cfg.QueueSize)

	if err := p.addTree(watcher, p.cfg.Dir, nil); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Watching for invoices",
		log.FieldWatchDir, p.cfg.Dir,
		"extension", p.cfg.Extension,
		"settle_delay", p.cfg.SettleDelay)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(queue)
		return p.dispatch(gctx, watcher, queue)
	})

	g.Go(func() error {
		return p.consume(gctx, queue)
	})

	err = g.Wait()
	p.state.Store(StateStopped)
	slog.InfoContext(context.WithoutCancel(ctx), "Watch pipeline stopped", log.FieldWatchDir, p.cfg.Dir)

	if ctx.Err() != nil {
		// A stop request is the normal exit path, not a failure.
		return nil
	}
	return err
}

// dispatch filters filesystem notifications and feeds qualifying paths
// into the queue in arrival order.
func (p *Pipeline) dispatch(ctx context.Context, watcher *fsnotify.Watcher, queue chan<- string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher event channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil {
				// The entry may already be gone; nothing to do.
				continue
			}
			if info.IsDir() {
				// New subdirectory: watch it, and pick up anything
				// created inside before the watch was in place.
				if err := p.addTree(watcher, event.Name, func(path string) {
					p.enqueue(ctx, queue, path)
				}); err != nil {
					slog.ErrorContext(ctx, "Failed to watch new subdirectory",
						log.FieldError, err, log.FieldPath, event.Name)
				}
				continue
			}
			if !p.qualifies(event.Name) {
				continue
			}
			slog.InfoContext(ctx, "New invoice detected", log.FieldPath, event.Name)
			p.enqueue(ctx, queue, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			slog.ErrorContext(ctx, "Watcher error", log.FieldError, err)
		}
	}
}

// consume processes queued events one at a time. An event is fully
// handled before the next is started, which keeps ledger writes for a
// category ordered and evaluation reads consistent.
func (p *Pipeline) consume(ctx context.Context, queue <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			p.reportAbandoned(ctx, queue)
			return ctx.Err()
		case path, ok := <-queue:
			if !ok {
				return nil
			}
			if !p.settle(ctx) {
				slog.WarnContext(context.WithoutCancel(ctx), "Event abandoned during shutdown", log.FieldPath, path)
				p.reportAbandoned(ctx, queue)
				return ctx.Err()
			}

			p.state.Store(StateProcessingEvent)
			if err := p.handler.ProcessFile(ctx, path); err != nil {
				slog.ErrorContext(ctx, "Failed to process invoice", log.FieldError, err, log.FieldPath, path)
			}
			p.state.Store(StateIdle)
		}
	}
}

// settle waits out the settle delay. Returns false if stop was
// requested before the delay elapsed.
func (p *Pipeline) settle(ctx context.Context) bool {
	if p.cfg.SettleDelay <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(p.cfg.SettleDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// reportAbandoned logs events that were accepted but will not be
// processed because of shutdown. Nothing is lost silently.
func (p *Pipeline) reportAbandoned(ctx context.Context, queue <-chan string) {
	logCtx := context.WithoutCancel(ctx)
	for {
		select {
		case path, ok := <-queue:
			if !ok {
				return
			}
			slog.WarnContext(logCtx, "Event abandoned during shutdown", log.FieldPath, path)
		default:
			return
		}
	}
}

func (p *Pipeline) enqueue(ctx context.Context, queue chan<- string, path string) {
	select {
	case queue <- path:
	case <-ctx.Done():
	}
}

func (p *Pipeline) qualifies(path string) bool {
	return strings.HasSuffix(path, p.cfg.Extension)
}

// addTree registers watches for dir and every subdirectory beneath it.
// When onFile is non-nil it is invoked for qualifying files found
// during the walk.
func (p *Pipeline) addTree(watcher *fsnotify.Watcher, dir string, onFile func(string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if onFile != nil && p.qualifies(path) {
			onFile(path)
		}
		return nil
	})
}
