package content

import (
	"context"
	"sync"

	"github.com/foliohq/folio/pkg/fl/logger"
)

// Source provides the remote operations a collection needs. List is fail-soft
// and always returns a renderable (possibly empty) slice; Delete fails outward
// with a typed error.
type Source[T Item] interface {
	List(ctx context.Context) []T
	Delete(ctx context.Context, id string) error
}

// Snapshot is the renderable state of a collection at one point in time.
type Snapshot[T Item] struct {
	Items   []T    `json:"items"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Collection keeps one content collection synchronized with the remote store:
// hydrate on Load, confirmed removal on Remove, in-place patch on Commit.
//
// Every operation is stamped with a monotonically increasing token. A load
// result is applied only if no newer operation started while it was in
// flight, so a late list response can never overwrite fresher user intent.
// Mutation results always apply; they are by definition the most recent
// intent for the ids they touch.
type Collection[T Item] struct {
	mu     sync.Mutex
	source Source[T]
	log    logger.Logger

	items    []T
	errMsg   string
	errKind  Kind
	seq      uint64
	inflight int
	loadSeq  uint64 // token of the in-flight load, 0 when none
	closed   bool
}

// NewCollection creates an empty collection bound to its source.
func NewCollection[T Item](source Source[T], log logger.Logger) *Collection[T] {
	return &Collection[T]{source: source, log: log}
}

// Snapshot returns a copy of the current collection state.
func (c *Collection[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{
		Items:   items,
		Loading: c.inflight > 0,
		Error:   c.errMsg,
	}
}

// ErrorKind reports the internal classification of the last failure.
// The UI renders only the message from Snapshot; this is for diagnostics.
func (c *Collection[T]) ErrorKind() Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errKind
}

// Load hydrates the collection from the store. List failures are absorbed
// upstream, so Load always settles into a renderable state. A Load issued
// while another is outstanding is coalesced; a Load result that lost a race
// against a newer operation is discarded.
func (c *Collection[T]) Load(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.loadSeq != 0 {
		c.mu.Unlock()
		return
	}
	c.seq++
	token := c.seq
	c.loadSeq = token
	c.inflight++
	c.clearErrorLocked()
	c.mu.Unlock()

	items := c.source.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if c.loadSeq == token {
		c.loadSeq = 0
	}
	if c.closed || token != c.seq {
		// Stale: a newer operation started after this load began.
		return
	}
	c.items = items
}

// Remove deletes an item by id. The store confirms the delete before the item
// leaves local state; on failure the items are unchanged and the error is set.
func (c *Collection[T]) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.seq++
	c.inflight++
	c.clearErrorLocked()
	c.mu.Unlock()

	err := c.source.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if c.closed {
		return err
	}
	if err != nil {
		c.errMsg = DisplayMessage(err)
		c.errKind = KindOf(err)
		return err
	}
	c.items = removeByID(c.items, id)
	return nil
}

// Commit applies the outcome of a form submission: append on create, replace
// by id on update. It never re-fetches; Reconcile is the explicit fallback.
func (c *Collection[T]) Commit(result Result[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.seq++
	c.clearErrorLocked()

	if result.Created {
		c.items = append(c.items, result.Item)
		return
	}
	for i, item := range c.items {
		if item.ItemID() == result.Item.ItemID() {
			c.items[i] = result.Item
			return
		}
	}
	// Updated an item the local state never saw; keep it rather than drop it.
	c.items = append(c.items, result.Item)
}

// Reconcile is the safe-but-slow fallback after a mutation: a full re-hydrate.
func (c *Collection[T]) Reconcile(ctx context.Context) {
	c.Load(ctx)
}

// Close marks the collection unmounted. In-flight results settle harmlessly
// without being applied.
func (c *Collection[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Collection[T]) clearErrorLocked() {
	c.errMsg = ""
	c.errKind = KindUnknown
}

func removeByID[T Item](items []T, id string) []T {
	out := items[:0]
	for _, item := range items {
		if item.ItemID() != id {
			out = append(out, item)
		}
	}
	return out
}
