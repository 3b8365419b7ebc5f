package ui

import (
	"sync"
	"time"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastWarning ToastKind = "warning"
	ToastInfo    ToastKind = "info"
)

const DefaultDuration = 5 * time.Second

type Toast struct {
	ID       int64
	Message  string
	Kind     ToastKind
	Duration time.Duration
}

// Toaster keeps visible toasts in insertion order. A toast with a positive
// duration removes itself when it elapses.
type Toaster struct {
	mu     sync.Mutex
	nextID int64
	items  []Toast
	timers map[int64]*time.Timer
}

func NewToaster() *Toaster {
	return &Toaster{nextID: 1, timers: make(map[int64]*time.Timer)}
}

// Show adds a toast and returns its id. Zero or negative durations stay
// until removed.
func (t *Toaster) Show(msg string, kind ToastKind, d time.Duration) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.items = append(t.items, Toast{ID: id, Message: msg, Kind: kind, Duration: d})
	if d > 0 {
		t.timers[id] = time.AfterFunc(d, func() { t.Remove(id) })
	}
	return id
}

func (t *Toaster) Success(msg string, d time.Duration) int64 { return t.Show(msg, ToastSuccess, d) }
func (t *Toaster) Error(msg string, d time.Duration) int64   { return t.Show(msg, ToastError, d) }
func (t *Toaster) Warning(msg string, d time.Duration) int64 { return t.Show(msg, ToastWarning, d) }
func (t *Toaster) Info(msg string, d time.Duration) int64    { return t.Show(msg, ToastInfo, d) }

// Remove dismisses id; unknown ids are ignored.
func (t *Toaster) Remove(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}
	for i, item := range t.items {
		if item.ID == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// Toasts returns the visible toasts, oldest first.
func (t *Toaster) Toasts() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Toast(nil), t.items...)
}

func (t *Toaster) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
	t.items = nil
}
