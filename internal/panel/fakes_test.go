package panel

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const testBase = "http://panel.test"

type call struct {
	Method  string
	Path    string
	Payload any
}

type fakeAPI struct {
	mu      sync.Mutex
	calls   []call
	respond func(n int, c call) (json.RawMessage, error)
}

func (f *fakeAPI) Do(_ context.Context, method, path string, payload any) (json.RawMessage, error) {
	f.mu.Lock()
	c := call{Method: method, Path: path, Payload: payload}
	f.calls = append(f.calls, c)
	n := len(f.calls)
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return nil, nil
	}
	return respond(n, c)
}

func (f *fakeAPI) URL(path string) string { return testBase + path }

func (f *fakeAPI) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

type badgeRecorder struct {
	mu    sync.Mutex
	count int
	items []MenuItem
	stale bool
}

func (b *badgeRecorder) SetCount(n int) { b.mu.Lock(); b.count = n; b.mu.Unlock() }
func (b *badgeRecorder) ClearList()     { b.mu.Lock(); b.items = nil; b.mu.Unlock() }
func (b *badgeRecorder) AppendItem(it MenuItem) {
	b.mu.Lock()
	b.items = append(b.items, it)
	b.mu.Unlock()
}
func (b *badgeRecorder) SetStale(s bool) { b.mu.Lock(); b.stale = s; b.mu.Unlock() }

func (b *badgeRecorder) snapshot() (int, []MenuItem, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count, append([]MenuItem(nil), b.items...), b.stale
}

type toastRecorder struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (t *toastRecorder) Info(msg string)  { t.mu.Lock(); t.infos = append(t.infos, msg); t.mu.Unlock() }
func (t *toastRecorder) Error(msg string) { t.mu.Lock(); t.errors = append(t.errors, msg); t.mu.Unlock() }

func (t *toastRecorder) snapshot() ([]string, []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.infos...), append([]string(nil), t.errors...)
}

type pageRecorder struct {
	mu      sync.Mutex
	reloads int
	removed []int64
}

func (p *pageRecorder) Reload()         { p.mu.Lock(); p.reloads++; p.mu.Unlock() }
func (p *pageRecorder) Remove(id int64) { p.mu.Lock(); p.removed = append(p.removed, id); p.mu.Unlock() }

func (p *pageRecorder) snapshot() (int, []int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads, append([]int64(nil), p.removed...)
}

type controlRecorder struct {
	mu      sync.Mutex
	history []bool
}

func (c *controlRecorder) SetDisabled(d bool) { c.mu.Lock(); c.history = append(c.history, d); c.mu.Unlock() }

func (c *controlRecorder) disabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.history) > 0 && c.history[len(c.history)-1]
}

type formRecorder struct {
	mu      sync.Mutex
	clears  int
	errors  map[string]string
	ordered []string
}

func (f *formRecorder) ClearErrors() {
	f.mu.Lock()
	f.clears++
	f.errors = map[string]string{}
	f.ordered = append(f.ordered, "clear")
	f.mu.Unlock()
}

func (f *formRecorder) SetFieldError(field, msg string) {
	f.mu.Lock()
	if f.errors == nil {
		f.errors = map[string]string{}
	}
	f.errors[field] = msg
	f.ordered = append(f.ordered, "set:"+field)
	f.mu.Unlock()
}

type scheduled struct {
	delay time.Duration
	fn    func()
}

type fakeScheduler struct {
	mu   sync.Mutex
	jobs []scheduled
}

func (s *fakeScheduler) After(d time.Duration, f func()) {
	s.mu.Lock()
	s.jobs = append(s.jobs, scheduled{delay: d, fn: f})
	s.mu.Unlock()
}

func jsonBody(s string) json.RawMessage { return json.RawMessage(s) }
