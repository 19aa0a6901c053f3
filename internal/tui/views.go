// Package tui renders the panel views on a terminal.
package tui

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/NordCoder/netpanel/internal/panel"
)

var (
	_ panel.BadgeView = (*Badge)(nil)
	_ panel.Toaster   = (*Toaster)(nil)
	_ panel.Page      = (*Page)(nil)
	_ panel.Control   = (*Button)(nil)
	_ panel.FormView  = (*Form)(nil)
)

// Badge keeps the notification count and menu in memory; Render draws them.
type Badge struct {
	// Title is shown in front of the header when set.
	Title string

	mu    sync.Mutex
	count int
	items []panel.MenuItem
	stale bool
}

func (b *Badge) SetCount(n int) {
	b.mu.Lock()
	b.count = n
	b.mu.Unlock()
}

func (b *Badge) ClearList() {
	b.mu.Lock()
	b.items = nil
	b.mu.Unlock()
}

func (b *Badge) AppendItem(it panel.MenuItem) {
	b.mu.Lock()
	b.items = append(b.items, it)
	b.mu.Unlock()
}

func (b *Badge) SetStale(stale bool) {
	b.mu.Lock()
	b.stale = stale
	b.mu.Unlock()
}

func (b *Badge) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

func (b *Badge) Render() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sb strings.Builder
	if b.Title != "" {
		sb.WriteString(hintStyle.Render(b.Title))
		sb.WriteString(" ")
	}
	sb.WriteString(headerStyle.Render("Notifications"))
	sb.WriteString(" ")
	sb.WriteString(countStyle.Render(strconv.Itoa(b.count)))
	if b.stale {
		sb.WriteString(" ")
		sb.WriteString(staleStyle.Render("(stale)"))
	}
	sb.WriteString("\n")

	if len(b.items) == 0 {
		sb.WriteString(itemStyle.Render(hintStyle.Render("nothing to show")))
		return panelStyle.Render(sb.String())
	}
	lines := make([]string, 0, len(b.items))
	for _, it := range b.items {
		line := it.Label
		if it.Tooltip != "" {
			line += " " + hintStyle.Render(firstLine(it.Tooltip))
		}
		lines = append(lines, itemStyle.Render(line)+"\n"+itemStyle.Render(hintStyle.Render(it.Href)))
	}
	if more := b.count - len(b.items); more > 0 {
		lines = append(lines, itemStyle.Render(hintStyle.Render(fmt.Sprintf("and %d more", more))))
	}
	sb.WriteString(strings.Join(lines, "\n"))
	return panelStyle.Render(sb.String())
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// Toaster prints one line per message.
type Toaster struct {
	mu sync.Mutex
	w  io.Writer
}

func NewToaster(w io.Writer) *Toaster { return &Toaster{w: w} }

func (t *Toaster) Info(msg string)  { t.print(infoStyle.Render("ok") + " " + msg) }
func (t *Toaster) Error(msg string) { t.print(errorStyle.Render("error") + " " + msg) }

func (t *Toaster) print(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.w, s)
}

// Page reacts to list changes. OnReload runs on Reload; removed ids are kept
// so callers can tell what disappeared.
type Page struct {
	OnReload func()

	mu      sync.Mutex
	reloads int
	removed []int64
}

func (p *Page) Reload() {
	p.mu.Lock()
	p.reloads++
	fn := p.OnReload
	p.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (p *Page) Remove(id int64) {
	p.mu.Lock()
	p.removed = append(p.removed, id)
	p.mu.Unlock()
}

func (p *Page) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Page) Removed() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int64(nil), p.removed...)
}

// Button is the control a transition was started from.
type Button struct {
	Label string

	mu       sync.Mutex
	disabled bool
}

func (b *Button) SetDisabled(d bool) {
	b.mu.Lock()
	b.disabled = d
	b.mu.Unlock()
}

func (b *Button) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

func (b *Button) Render() string {
	if b.Disabled() {
		return hintStyle.Render("[" + b.Label + "]")
	}
	return "[" + b.Label + "]"
}

// Form collects field errors for the create dialog.
type Form struct {
	mu     sync.Mutex
	errors map[string]string
}

func (f *Form) ClearErrors() {
	f.mu.Lock()
	f.errors = nil
	f.mu.Unlock()
}

func (f *Form) SetFieldError(field, msg string) {
	f.mu.Lock()
	if f.errors == nil {
		f.errors = make(map[string]string)
	}
	f.errors[field] = msg
	f.mu.Unlock()
}

func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

func (f *Form) Render() string {
	errs := f.Errors()
	if len(errs) == 0 {
		return ""
	}
	fields := make([]string, 0, len(errs))
	for k := range errs {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	lines := make([]string, 0, len(fields))
	for _, k := range fields {
		lines = append(lines, fieldStyle.Render(k+": "+errs[k]))
	}
	return strings.Join(lines, "\n")
}
