// Package watcher follows a chat export directory and collects the action
// phrases written to it.
package watcher

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of writes an editor or exporter makes
// to one file into a single parse
const debounceDelay = 100 * time.Millisecond

// ChatWatcher watches one directory at a time. Watching a new path closes
// the previous watch.
type ChatWatcher struct {
	buffer *PendingActionsBuffer

	mu      sync.Mutex
	current *watch
}

type watch struct {
	path   string
	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewChatWatcher creates a watcher that appends found actions to buffer
func NewChatWatcher(buffer *PendingActionsBuffer) *ChatWatcher {
	return &ChatWatcher{buffer: buffer}
}

// Watch starts watching path, a file or a directory tree. Hidden
// directories below it are skipped
func (w *ChatWatcher) Watch(path string) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if p == path {
				return fsw.Add(p)
			}
			return nil
		}
		if p != path && isHidden(p) {
			return filepath.SkipDir
		}
		return fsw.Add(p)
	})
	if err != nil {
		_ = fsw.Close()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	next := &watch{
		path:   path,
		fsw:    fsw,
		cancel: cancel,
		done:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
	}

	w.mu.Lock()
	previous := w.current
	w.current = next
	w.mu.Unlock()

	if previous != nil {
		previous.stop()
	}

	go next.run(ctx, w.buffer)
	log.Printf("[Watcher] Watching %s", path)
	return nil
}

// Path returns the watched path, or "" when nothing is watched
func (w *ChatWatcher) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return ""
	}
	return w.current.path
}

// Close stops the current watch
func (w *ChatWatcher) Close() error {
	w.mu.Lock()
	current := w.current
	w.current = nil
	w.mu.Unlock()

	if current == nil {
		return nil
	}
	return current.stop()
}

func (c *watch) run(ctx context.Context, buffer *PendingActionsBuffer) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == 0 || isHidden(event.Name) {
				continue
			}
			c.debounce(event.Name, buffer)
		case err, ok := <-c.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("[Watcher] Watch error on %s: %v", c.path, err)
		}
	}
}

func (c *watch) debounce(path string, buffer *PendingActionsBuffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timers == nil {
		return
	}
	if timer, ok := c.timers[path]; ok {
		timer.Stop()
	}
	c.timers[path] = time.AfterFunc(debounceDelay, func() {
		c.mu.Lock()
		delete(c.timers, path)
		c.mu.Unlock()

		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("[Watcher] Error reading %s: %v", path, err)
			return
		}
		buffer.Add(ParseActions(string(data), filepath.Base(path), time.Now())...)
	})
}

func (c *watch) stop() error {
	c.cancel()
	err := c.fsw.Close()
	<-c.done

	c.mu.Lock()
	for _, timer := range c.timers {
		timer.Stop()
	}
	c.timers = nil
	c.mu.Unlock()
	return err
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
