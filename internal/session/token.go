package session

import (
	"context"
	"sync/atomic"

	"github.com/abelbrown/popcorn/internal/otel"
)

// Token identifies one issued call. Cancel aborts the call's HTTP request
// and marks the token so a response that is already in hand is still
// discarded.
type Token struct {
	id       uint64
	CallID   string // correlation id for the event log
	ctx      context.Context
	cancel   context.CancelFunc
	canceled atomic.Bool
}

// ID returns the token's sequence number within its Controller.
func (t *Token) ID() uint64 { return t.id }

// Context is the context the call must run under.
func (t *Token) Context() context.Context { return t.ctx }

// Cancel marks the token canceled and aborts its context. Safe to call from
// any goroutine, any number of times.
func (t *Token) Cancel() {
	t.canceled.Store(true)
	t.cancel()
}

// Canceled reports whether Cancel has been called.
func (t *Token) Canceled() bool { return t.canceled.Load() }

// Controller hands out tokens and tracks the single live one.
// Not safe for concurrent use; it lives on the Update goroutine.
type Controller struct {
	parent context.Context
	next   uint64
	live   *Token
}

// NewController returns a Controller whose tokens derive from parent.
func NewController(parent context.Context) *Controller {
	if parent == nil {
		parent = context.Background()
	}
	return &Controller{parent: parent}
}

// Begin cancels the live token, if any, and returns a new live token.
func (c *Controller) Begin() *Token {
	c.Cancel()
	c.next++
	ctx, cancel := context.WithCancel(c.parent)
	t := &Token{id: c.next, CallID: otel.NewCallID(), ctx: ctx, cancel: cancel}
	c.live = t
	return t
}

// Cancel cancels the live token and leaves none live. Returns the token it
// canceled, or nil.
func (c *Controller) Cancel() *Token {
	t := c.live
	if t == nil {
		return nil
	}
	c.live = nil
	t.Cancel()
	return t
}

// Owns reports whether t is the live, uncanceled token. A settled call may
// change state only when this holds.
func (c *Controller) Owns(t *Token) bool {
	return t != nil && t == c.live && !t.Canceled()
}

// Release retires t after its call settled, freeing its context without
// marking it canceled. No-op unless t is live.
func (c *Controller) Release(t *Token) {
	if t == nil || t != c.live {
		return
	}
	c.live = nil
	t.cancel()
}

// Live returns the live token, or nil.
func (c *Controller) Live() *Token { return c.live }
