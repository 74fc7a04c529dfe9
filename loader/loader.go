// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loader loads 3D models asynchronously. Files are fetched
// and decoded on background goroutines, and the results are
// delivered as events on the goroutine that calls [Loader.Poll],
// so that listeners run on the update loop.
package loader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/events"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/semaphore"
)

// ErrNoDecoder is returned for a file type with no registered [Decoder].
var ErrNoDecoder = errors.New("no decoder for file type")

// LoadError is a failure to load a model.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Opener opens the named file. The first name opened is the model
// itself, resolved against the loader base; later names are files
// it refers to, resolved relative to the model.
type Opener func(ctx context.Context, name string) (io.ReadCloser, error)

// Decoder decodes one model file format. It opens the main file
// and any files it refers to, such as material libraries, with open.
type Decoder interface {

	// Desc returns a description of the format.
	Desc() string

	// Decode decodes the named file into a model.
	Decode(ctx context.Context, name string, open Opener) (*engine.Model, error)
}

// Decoders are the registered decoders keyed by lowercase extension.
var Decoders = map[string]Decoder{
	".obj": ObjDecoder{},
}

// Register registers the decoder for the given extension, such as ".gltf".
func Register(ext string, dec Decoder) {
	Decoders[strings.ToLower(ext)] = dec
}

// DecoderFor returns the decoder for the extension of the given name.
// A trailing .gz is ignored, as compressed files are detected by content.
func DecoderFor(name string) (Decoder, error) {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSuffix(strings.ToLower(name), ".gz")
	ext := path.Ext(name)
	if dec, ok := Decoders[ext]; ok {
		return dec, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoDecoder, ext)
}

// Task is one model load. Its listeners receive [events.Progress]
// events while loading, then exactly one [events.Loaded] or
// [events.LoadError] event, unless the task is canceled first.
type Task struct {

	// URL is the url or path as given to [Loader.Load].
	URL string

	// Base is the base that a relative URL is resolved against.
	Base string

	// Model is the decoded model, once loaded.
	Model *engine.Model

	// Err is the failure, a [*LoadError], if loading failed.
	Err error

	listeners events.Listeners
	cancel    context.CancelFunc
	canceled  atomic.Bool
	done      bool
}

// On adds a listener for the given event type.
func (t *Task) On(typ events.Types, fun func(ev events.Event)) {
	t.listeners.Add(typ, fun)
}

// Listeners returns the listeners of the task.
func (t *Task) Listeners() *events.Listeners {
	return &t.listeners
}

// Cancel cancels the task. No further events are delivered for it.
func (t *Task) Cancel() {
	if t.canceled.Swap(true) {
		return
	}
	t.cancel()
}

// IsCanceled returns whether the task was canceled.
func (t *Task) IsCanceled() bool { return t.canceled.Load() }

// IsDone returns whether the final event was delivered.
func (t *Task) IsDone() bool { return t.done }

// message is a result sent from a load goroutine.
type message struct {
	task   *Task
	typ    events.Types
	loaded int64
	total  int64
	model  *engine.Model
	err    error
}

// Loader loads models.
type Loader struct {

	// BaseURL resolves relative urls. It is an http(s) url or a
	// directory; relative paths are resolved against the working
	// directory when it is empty.
	BaseURL string

	// Timeout is the maximum duration of one load; 0 for none.
	Timeout time.Duration

	// Client is used for http(s) urls.
	Client *http.Client

	sem      *semaphore.Weighted
	results  chan message
	closing  chan struct{}
	closeOne sync.Once
	pending  map[*Task]struct{}
	mu       sync.Mutex
}

// DefaultMaxLoads is the default number of concurrent loads.
const DefaultMaxLoads = 4

// New returns a new loader. maxLoads limits the number of files
// fetched at once, [DefaultMaxLoads] if it is 0.
func New(baseURL string, timeout time.Duration, maxLoads int) *Loader {
	if maxLoads <= 0 {
		maxLoads = DefaultMaxLoads
	}
	return &Loader{
		BaseURL: baseURL,
		Timeout: timeout,
		Client:  http.DefaultClient,
		sem:     semaphore.NewWeighted(int64(maxLoads)),
		results: make(chan message, 64),
		closing: make(chan struct{}),
		pending: map[*Task]struct{}{},
	}
}

// Load starts loading the model at the given url or path, relative
// to [Loader.BaseURL]. Events are delivered by [Loader.Poll].
func (l *Loader) Load(ctx context.Context, u string) *Task {
	return l.LoadFrom(ctx, "", u)
}

// LoadFrom is like [Loader.Load], but resolves a relative url against
// the given base, such as the directory of the document that refers
// to the model. An empty base uses [Loader.BaseURL].
func (l *Loader) LoadFrom(ctx context.Context, base, u string) *Task {
	if base == "" {
		base = l.BaseURL
	}
	t := &Task{URL: u, Base: base}
	if l.Timeout > 0 {
		ctx, t.cancel = context.WithTimeout(ctx, l.Timeout)
	} else {
		ctx, t.cancel = context.WithCancel(ctx)
	}
	l.mu.Lock()
	l.pending[t] = struct{}{}
	l.mu.Unlock()
	go l.run(ctx, t)
	return t
}

// Pending returns the number of tasks whose final event has not been delivered.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

func (l *Loader) run(ctx context.Context, t *Task) {
	defer t.cancel()
	m := message{task: t, typ: events.Loaded}
	var err error
	m.model, m.loaded, m.total, err = l.load(ctx, t)
	if err != nil {
		m.typ, m.err = events.LoadError, &LoadError{URL: t.URL, Err: err}
	}
	select {
	case l.results <- m:
	case <-l.closing:
	}
}

// load fetches and decodes the model, returning it with the
// number of bytes read from the main file and its total size.
func (l *Loader) load(ctx context.Context, t *Task) (*engine.Model, int64, int64, error) {
	dec, err := DecoderFor(t.URL)
	if err != nil {
		return nil, 0, -1, err
	}
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return nil, 0, -1, err
	}
	defer l.sem.Release(1)
	mainURL, err := resolve(t.Base, t.URL)
	if err != nil {
		return nil, 0, -1, err
	}
	var pr *progressReader
	open := func(ctx context.Context, name string) (io.ReadCloser, error) {
		u := mainURL
		if pr != nil {
			ref, err := url.Parse(name)
			if err != nil {
				return nil, err
			}
			u = mainURL.ResolveReference(ref)
		}
		rc, total, err := l.open(ctx, u)
		if err != nil {
			return nil, err
		}
		if pr == nil {
			pr = &progressReader{ReadCloser: rc, ctx: ctx, l: l, t: t, total: total}
			rc = pr
		}
		return decompress(rc)
	}
	model, err := dec.Decode(ctx, t.URL, open)
	loaded, total := int64(0), int64(-1)
	if pr != nil {
		loaded, total = pr.loaded, pr.total
	}
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, loaded, total, err
	}
	return model, loaded, total, nil
}

// open opens the url, returning the total size or -1.
func (l *Loader) open(ctx context.Context, u *url.URL) (io.ReadCloser, int64, error) {
	if u.Scheme == "http" || u.Scheme == "https" {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, -1, err
		}
		resp, err := l.Client.Do(req)
		if err != nil {
			return nil, -1, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, -1, fmt.Errorf("%s: %s", u, resp.Status)
		}
		return resp.Body, resp.ContentLength, nil
	}
	f, err := os.Open(filepath.FromSlash(u.Path))
	if err != nil {
		return nil, -1, err
	}
	total := int64(-1)
	if st, err := f.Stat(); err == nil {
		total = st.Size()
	}
	return f, total, nil
}

// resolve resolves the name against the base url or directory.
func resolve(base, name string) (*url.URL, error) {
	u, err := url.Parse(name)
	if err != nil {
		return nil, err
	}
	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		return u, nil
	case u.Scheme == "file":
		return &url.URL{Scheme: "file", Path: u.Path}, nil
	case u.Scheme != "":
		return nil, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if strings.HasPrefix(base, "http://") || strings.HasPrefix(base, "https://") {
		bu, err := url.Parse(base)
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(bu.Path, "/") {
			bu.Path += "/"
		}
		return bu.ResolveReference(u), nil
	}
	p := filepath.FromSlash(u.Path)
	if !filepath.IsAbs(p) && base != "" {
		p = filepath.Join(base, p)
	}
	p, err = filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(p)}, nil
}

// decompress returns a reader that gunzips the contents of rc
// if they are gzip compressed.
func decompress(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		rc.Close()
		return nil, err
	}
	if !mimetype.Detect(head).Is("application/gzip") {
		return readCloser{br, rc}, nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return readCloser{zr, multiCloser{zr, rc}}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

type multiCloser []io.Closer

func (mc multiCloser) Close() error {
	var errs []error
	for _, c := range mc {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// progressReader reports the bytes read from the main file.
type progressReader struct {
	io.ReadCloser
	ctx    context.Context
	l      *Loader
	t      *Task
	loaded int64
	total  int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	if err := pr.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := pr.ReadCloser.Read(p)
	if n > 0 {
		pr.loaded += int64(n)
		m := message{task: pr.t, typ: events.Progress, loaded: pr.loaded, total: pr.total}
		select {
		case pr.l.results <- m:
		default: // progress is best effort
		}
	}
	return n, err
}

// Poll delivers the events of all finished work without blocking,
// and returns the number of events delivered.
func (l *Loader) Poll() int {
	n := 0
	for {
		select {
		case m := <-l.results:
			if l.deliver(m) {
				n++
			}
		default:
			return n
		}
	}
}

// Wait delivers events until no tasks are pending or ctx is done.
func (l *Loader) Wait(ctx context.Context) error {
	for l.Pending() > 0 {
		select {
		case m := <-l.results:
			l.deliver(m)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// deliver calls the listeners of the task for the message,
// returning whether an event was delivered.
func (l *Loader) deliver(m message) bool {
	t := m.task
	final := m.typ != events.Progress
	if final {
		l.mu.Lock()
		delete(l.pending, t)
		l.mu.Unlock()
	}
	if t.IsCanceled() || t.done {
		return false
	}
	ev := events.NewLoad(m.typ, t.URL)
	ev.Loaded, ev.Total = m.loaded, m.total
	if final {
		t.done = true
		t.Model, t.Err = m.model, m.err
		ev.Err = m.err
		if m.err != nil {
			slog.Warn("model load failed", "url", t.URL, "err", m.err)
		} else {
			slog.Debug("model loaded", "url", t.URL, "meshes", len(m.model.Meshes))
		}
	}
	t.listeners.Call(ev)
	return true
}

// Close cancels all pending tasks and stops delivering events.
func (l *Loader) Close() {
	l.mu.Lock()
	for t := range l.pending {
		t.Cancel()
	}
	clear(l.pending)
	l.mu.Unlock()
	l.closeOne.Do(func() { close(l.closing) })
}
