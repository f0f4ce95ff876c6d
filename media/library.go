// SPDX-License-Identifier: EPL-2.0

package media

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	// ErrOutsideRoot reports a name that is absolute or climbs out of the
	// library root, directly or through a symlink.
	ErrOutsideRoot = errors.New("media: path outside library root")
	// ErrTooLarge reports a file over the library's size cap.
	ErrTooLarge = errors.New("media: file too large")
)

// LibraryOptions configures a Library. Zero values pick the defaults.
type LibraryOptions struct {
	SampleRate int
	// MaxBytes caps the size of a single file.
	MaxBytes int64
	// MaxEntries bounds how many decoded elements stay cached.
	MaxEntries int
	// Evicted runs, outside the library lock, for each element pushed out
	// of the cache.
	Evicted func(*Element)
	Logger  *slog.Logger
}

const (
	defaultMaxBytes   = 50 << 20
	defaultMaxEntries = 8
)

// Library opens media files below one directory and keeps the most
// recently used decoded elements so each file reaches the graph once.
type Library struct {
	root   *os.Root
	decode DecodeFunc
	opts   LibraryOptions
	log    *slog.Logger

	mu    sync.Mutex
	order *list.List // front is most recent; values are *entry
	byKey map[string]*list.Element
}

type entry struct {
	name string
	el   *Element
}

// NewLibrary opens dir as the library root.
func NewLibrary(dir string, decode DecodeFunc, opts LibraryOptions) (*Library, error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("opening media root %s: %w", dir, err)
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Library{
		root:   root,
		decode: decode,
		opts:   opts,
		log:    log.With("component", "media", "root", root.Name()),
		order:  list.New(),
		byKey:  map[string]*list.Element{},
	}, nil
}

// Len is the number of cached elements.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.order.Len()
}

// clean turns a slash separated name relative to the root into its cache
// key, rejecting anything that would leave the root lexically.
func clean(name string) (string, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%q: %w", name, ErrOutsideRoot)
	}
	return filepath.Clean(local), nil
}

// Open returns the element for name, decoding it on first use.
func (l *Library) Open(ctx context.Context, name string) (*Element, error) {
	key, err := clean(name)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if e, ok := l.byKey[key]; ok {
		l.order.MoveToFront(e)
		el := e.Value.(*entry).el
		l.mu.Unlock()
		return el, nil
	}
	l.mu.Unlock()

	data, err := l.read(key)
	if err != nil {
		return nil, err
	}
	buf, err := l.decode(ctx, data, l.opts.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}

	l.mu.Lock()
	if e, ok := l.byKey[key]; ok {
		// Another caller decoded it first; keep theirs.
		l.order.MoveToFront(e)
		el := e.Value.(*entry).el
		l.mu.Unlock()
		return el, nil
	}
	el := New(key, buf)
	l.byKey[key] = l.order.PushFront(&entry{name: key, el: el})
	evicted := l.trimLocked()
	l.mu.Unlock()

	l.log.Debug("media opened", "name", key, "duration", el.Duration(), "bytes", len(data))
	for _, old := range evicted {
		l.log.Debug("media evicted", "name", old.name)
		if l.opts.Evicted != nil {
			l.opts.Evicted(old.el)
		}
	}
	return el, nil
}

func (l *Library) trimLocked() []*entry {
	var out []*entry
	for l.order.Len() > l.opts.MaxEntries {
		back := l.order.Back()
		ent := l.order.Remove(back).(*entry)
		delete(l.byKey, ent.name)
		out = append(out, ent)
	}
	return out
}

// read loads key through the root, so symlinks cannot reach outside it.
func (l *Library) read(key string) ([]byte, error) {
	f, err := l.root.Open(key)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission) {
			err = fmt.Errorf("%w: %w", ErrOutsideRoot, err)
		}
		return nil, fmt.Errorf("opening %s: %w", key, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", key, err)
	}
	if !st.Mode().IsRegular() {
		return nil, fmt.Errorf("opening %s: not a regular file", key)
	}
	if st.Size() > l.opts.MaxBytes {
		return nil, fmt.Errorf("%s is %d bytes, cap %d: %w", key, st.Size(), l.opts.MaxBytes, ErrTooLarge)
	}

	// The file may grow after Stat.
	data, err := io.ReadAll(io.LimitReader(f, l.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	if int64(len(data)) > l.opts.MaxBytes {
		return nil, fmt.Errorf("%s grew past cap %d: %w", key, l.opts.MaxBytes, ErrTooLarge)
	}
	return data, nil
}

func (l *Library) Close() error {
	l.mu.Lock()
	l.order.Init()
	clear(l.byKey)
	l.mu.Unlock()

	return l.root.Close()
}
