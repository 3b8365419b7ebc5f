package ui

import (
	"context"
	"errors"
	"sync"
)

var ErrConfirmPending = errors.New("ui: a confirmation is already pending")

// Prompt is the question shown by the confirmation dialog.
type Prompt struct {
	Title   string
	Message string
}

// Confirmer is a single confirmation slot. Only one request may be pending.
type Confirmer struct {
	mu     sync.Mutex
	prompt *Prompt
	answer chan bool
}

// Confirm blocks until Resolve, Reject or ctx ends. It fails fast with
// ErrConfirmPending when another request holds the slot.
func (c *Confirmer) Confirm(ctx context.Context, title, message string) (bool, error) {
	c.mu.Lock()
	if c.answer != nil {
		c.mu.Unlock()
		return false, ErrConfirmPending
	}
	answer := make(chan bool, 1)
	c.prompt = &Prompt{Title: title, Message: message}
	c.answer = answer
	c.mu.Unlock()

	select {
	case ok := <-answer:
		return ok, nil
	case <-ctx.Done():
		c.mu.Lock()
		if c.answer == answer {
			c.prompt = nil
			c.answer = nil
		}
		c.mu.Unlock()
		return false, ctx.Err()
	}
}

// Pending returns the open prompt, if any.
func (c *Confirmer) Pending() (Prompt, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.prompt == nil {
		return Prompt{}, false
	}
	return *c.prompt, true
}

// Resolve answers yes. It is a no-op when nothing is pending.
func (c *Confirmer) Resolve() { c.settle(true) }

// Reject answers no. It is a no-op when nothing is pending.
func (c *Confirmer) Reject() { c.settle(false) }

func (c *Confirmer) settle(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.answer == nil {
		return
	}
	c.answer <- ok
	c.prompt = nil
	c.answer = nil
}
