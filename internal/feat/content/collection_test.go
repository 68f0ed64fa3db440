package content

import (
	"context"
	"sync"
	"testing"

	"github.com/foliohq/folio/pkg/fl/logger"
)

type fakeProjectSource struct {
	mu        sync.Mutex
	items     []Project
	deleteErr error
	deleted   []string
	listCalls int

	// When set, List blocks until release is closed. started is signalled
	// once per blocking call so tests can sequence around the in-flight load.
	block   bool
	started chan struct{}
	release chan struct{}
}

func (s *fakeProjectSource) List(ctx context.Context) []Project {
	s.mu.Lock()
	s.listCalls++
	block := s.block
	items := make([]Project, len(s.items))
	copy(items, s.items)
	s.mu.Unlock()

	if block {
		s.started <- struct{}{}
		<-s.release
	}
	return items
}

func (s *fakeProjectSource) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return nil
}

func (s *fakeProjectSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func TestCollectionLoad(t *testing.T) {
	source := &fakeProjectSource{
		items: []Project{
			{ID: "p1", Name: "One"},
			{ID: "p2", Name: "Two"},
		},
	}
	coll := NewCollection[Project](source, logger.NewNoop())

	coll.Load(context.Background())

	snap := coll.Snapshot()
	if snap.Loading {
		t.Error("Expected loading to be false after load settled")
	}
	if snap.Error != "" {
		t.Errorf("Expected no error, got %q", snap.Error)
	}
	if len(snap.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(snap.Items))
	}
	if snap.Items[0].ID != "p1" || snap.Items[1].ID != "p2" {
		t.Errorf("Items out of order: %v", snap.Items)
	}
}

func TestCollectionRemove(t *testing.T) {
	source := &fakeProjectSource{
		items: []Project{
			{ID: "p1", Name: "One"},
			{ID: "p2", Name: "Two"},
		},
	}
	coll := NewCollection[Project](source, logger.NewNoop())
	coll.Load(context.Background())

	if err := coll.Remove(context.Background(), "p2"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	snap := coll.Snapshot()
	if len(snap.Items) != 1 {
		t.Fatalf("Expected 1 item after remove, got %d", len(snap.Items))
	}
	if snap.Items[0].ID != "p1" {
		t.Errorf("Expected p1 to survive, got %s", snap.Items[0].ID)
	}
	if len(source.deleted) != 1 || source.deleted[0] != "p2" {
		t.Errorf("Expected store delete for p2, got %v", source.deleted)
	}
}

func TestCollectionRemoveFailure(t *testing.T) {
	source := &fakeProjectSource{
		items: []Project{
			{ID: "p1", Name: "One"},
			{ID: "p2", Name: "Two"},
		},
		deleteErr: NewStoreError(KindNetwork, "delete project", "Cannot reach the content store", nil),
	}
	coll := NewCollection[Project](source, logger.NewNoop())
	coll.Load(context.Background())

	err := coll.Remove(context.Background(), "p2")
	if err == nil {
		t.Fatal("Expected remove to fail")
	}

	snap := coll.Snapshot()
	if len(snap.Items) != 2 {
		t.Errorf("Expected items unchanged after failed remove, got %d", len(snap.Items))
	}
	if snap.Error == "" {
		t.Error("Expected error message to be surfaced")
	}
	if coll.ErrorKind() != KindNetwork {
		t.Errorf("Expected network error kind, got %s", coll.ErrorKind())
	}
}

func TestCollectionStaleLoadDiscarded(t *testing.T) {
	source := &fakeProjectSource{
		items:   []Project{{ID: "old", Name: "Stale"}},
		block:   true,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	coll := NewCollection[Project](source, logger.NewNoop())

	done := make(chan struct{})
	go func() {
		coll.Load(context.Background())
		close(done)
	}()
	<-source.started

	// A mutation lands while the load is still in flight; the load result
	// must not overwrite it.
	coll.Commit(Result[Project]{Item: Project{ID: "new", Name: "Fresh"}, Created: true})

	close(source.release)
	<-done

	snap := coll.Snapshot()
	if len(snap.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(snap.Items))
	}
	if snap.Items[0].ID != "new" {
		t.Errorf("Stale load result overwrote newer state, got %s", snap.Items[0].ID)
	}
}

func TestCollectionLoadCoalesced(t *testing.T) {
	source := &fakeProjectSource{
		items:   []Project{{ID: "p1"}},
		block:   true,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	coll := NewCollection[Project](source, logger.NewNoop())

	done := make(chan struct{})
	go func() {
		coll.Load(context.Background())
		close(done)
	}()
	<-source.started

	// Second load while the first is outstanding: coalesced, no second fetch.
	coll.Load(context.Background())

	close(source.release)
	<-done

	if got := source.calls(); got != 1 {
		t.Errorf("Expected 1 list call, got %d", got)
	}
	snap := coll.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ID != "p1" {
		t.Errorf("Expected coalesced load to settle normally, got %v", snap.Items)
	}
}

func TestCollectionCommit(t *testing.T) {
	source := &fakeProjectSource{items: []Project{{ID: "p1", Name: "One"}}}
	coll := NewCollection[Project](source, logger.NewNoop())
	coll.Load(context.Background())

	coll.Commit(Result[Project]{Item: Project{ID: "p2", Name: "Two"}, Created: true})
	snap := coll.Snapshot()
	if len(snap.Items) != 2 || snap.Items[1].ID != "p2" {
		t.Fatalf("Expected create to append, got %v", snap.Items)
	}

	coll.Commit(Result[Project]{Item: Project{ID: "p1", Name: "Renamed"}})
	snap = coll.Snapshot()
	if len(snap.Items) != 2 {
		t.Fatalf("Expected update to replace in place, got %d items", len(snap.Items))
	}
	if snap.Items[0].Name != "Renamed" {
		t.Errorf("Expected p1 to be replaced, got %q", snap.Items[0].Name)
	}

	// Update for an id local state never saw is kept rather than dropped.
	coll.Commit(Result[Project]{Item: Project{ID: "p9", Name: "Unseen"}})
	snap = coll.Snapshot()
	if len(snap.Items) != 3 || snap.Items[2].ID != "p9" {
		t.Errorf("Expected unseen update to be appended, got %v", snap.Items)
	}
}

func TestCollectionClose(t *testing.T) {
	source := &fakeProjectSource{items: []Project{{ID: "p1"}}}
	coll := NewCollection[Project](source, logger.NewNoop())
	coll.Load(context.Background())
	coll.Close()

	coll.Commit(Result[Project]{Item: Project{ID: "p2"}, Created: true})
	coll.Load(context.Background())

	snap := coll.Snapshot()
	if len(snap.Items) != 1 {
		t.Errorf("Expected closed collection to ignore operations, got %d items", len(snap.Items))
	}
	if got := source.calls(); got != 1 {
		t.Errorf("Expected no list calls after close, got %d", got)
	}
}
