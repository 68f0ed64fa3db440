package content

import (
	"context"
	"strings"
	"testing"

	"github.com/foliohq/folio/pkg/fl/logger"
)

type fakeUploader struct {
	gotFiles []UploadFile
	err      error

	// respond builds the response refs from the request; nil means echo
	// tokens positionally.
	respond func(files []UploadFile) []UploadedRef
}

func (u *fakeUploader) UploadBatch(ctx context.Context, files []UploadFile) ([]UploadedRef, error) {
	u.gotFiles = files
	if u.err != nil {
		return nil, u.err
	}
	if u.respond != nil {
		return u.respond(files), nil
	}
	refs := make([]UploadedRef, 0, len(files))
	for _, f := range files {
		refs = append(refs, UploadedRef{Token: f.Token, ID: f.Name, URL: "https://store/" + f.Name})
	}
	return refs, nil
}

func TestPipelineStage(t *testing.T) {
	p := NewPipeline(&fakeUploader{}, logger.NewNoop())

	pu := p.Stage("a.png", []byte{0x89, 0x50, 0x4e, 0x47})
	if pu.Token == "" {
		t.Error("Expected a correlation token to be assigned")
	}
	if pu.Preview() == nil {
		t.Fatal("Expected a preview handle")
	}
	if !strings.HasPrefix(pu.Preview().URI(), "data:") {
		t.Errorf("Expected a data URI preview, got %q", pu.Preview().URI())
	}
	if got := p.Registry().Open(); got != 1 {
		t.Errorf("Expected 1 open preview, got %d", got)
	}

	pu.Preview().Release()
	if got := p.Registry().Open(); got != 0 {
		t.Errorf("Expected 0 open previews after release, got %d", got)
	}
}

func TestPreviewReleaseExactlyOnce(t *testing.T) {
	p := NewPipeline(&fakeUploader{}, logger.NewNoop())
	a := p.Stage("a.png", []byte("aaa"))
	b := p.Stage("b.png", []byte("bbb"))

	a.Preview().Release()
	a.Preview().Release()
	a.Preview().Release()

	if got := p.Registry().Open(); got != 1 {
		t.Errorf("Expected double release to be a no-op, got %d open", got)
	}
	if a.Preview().URI() != "" {
		t.Error("Expected released preview to have no URI")
	}
	if b.Preview().URI() == "" {
		t.Error("Expected unreleased preview to keep its URI")
	}
}

func TestUploadAndResolveReordersByToken(t *testing.T) {
	uploader := &fakeUploader{
		respond: func(files []UploadFile) []UploadedRef {
			// The store answers in reverse order but echoes tokens.
			refs := make([]UploadedRef, 0, len(files))
			for i := len(files) - 1; i >= 0; i-- {
				refs = append(refs, UploadedRef{
					Token: files[i].Token,
					ID:    files[i].Name,
					URL:   "https://store/" + files[i].Name,
				})
			}
			return refs
		},
	}
	p := NewPipeline(uploader, logger.NewNoop())

	pending := []*PendingUpload{
		p.Stage("first.png", []byte("111")),
		p.Stage("second.png", []byte("222")),
		p.Stage("third.png", []byte("333")),
	}

	refs, err := p.UploadAndResolve(context.Background(), pending)
	if err != nil {
		t.Fatalf("UploadAndResolve failed: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("Expected 3 refs, got %d", len(refs))
	}
	for i, want := range []string{"first.png", "second.png", "third.png"} {
		if refs[i].ID != want {
			t.Errorf("Ref %d: expected %s, got %s", i, want, refs[i].ID)
		}
	}
}

func TestUploadAndResolvePositionalFallback(t *testing.T) {
	uploader := &fakeUploader{
		respond: func(files []UploadFile) []UploadedRef {
			// No tokens echoed at all; positional order is all we have.
			refs := make([]UploadedRef, 0, len(files))
			for _, f := range files {
				refs = append(refs, UploadedRef{ID: f.Name, URL: "https://store/" + f.Name})
			}
			return refs
		},
	}
	p := NewPipeline(uploader, logger.NewNoop())

	pending := []*PendingUpload{
		p.Stage("a.png", []byte("111")),
		p.Stage("b.png", []byte("222")),
	}

	refs, err := p.UploadAndResolve(context.Background(), pending)
	if err != nil {
		t.Fatalf("Expected positional fallback to succeed: %v", err)
	}
	if refs[0].ID != "a.png" || refs[1].ID != "b.png" {
		t.Errorf("Positional fallback out of order: %v", refs)
	}
}

func TestUploadAndResolveCountMismatch(t *testing.T) {
	uploader := &fakeUploader{
		respond: func(files []UploadFile) []UploadedRef {
			return []UploadedRef{{ID: "only-one", URL: "https://store/only-one"}}
		},
	}
	p := NewPipeline(uploader, logger.NewNoop())

	pending := []*PendingUpload{
		p.Stage("a.png", []byte("111")),
		p.Stage("b.png", []byte("222")),
	}

	if _, err := p.UploadAndResolve(context.Background(), pending); err == nil {
		t.Error("Expected untagged count mismatch to fail")
	}
}

func TestUploadAndResolveMissingToken(t *testing.T) {
	uploader := &fakeUploader{
		respond: func(files []UploadFile) []UploadedRef {
			// Echoes a token for the first file only.
			return []UploadedRef{
				{Token: files[0].Token, ID: "a", URL: "https://store/a"},
			}
		},
	}
	p := NewPipeline(uploader, logger.NewNoop())

	pending := []*PendingUpload{
		p.Stage("a.png", []byte("111")),
		p.Stage("b.png", []byte("222")),
	}

	if _, err := p.UploadAndResolve(context.Background(), pending); err == nil {
		t.Error("Expected missing descriptor to fail the whole batch")
	}
}

func TestUploadAndResolveAtomicFailure(t *testing.T) {
	uploader := &fakeUploader{
		err: NewStoreError(KindNetwork, "upload batch", "Cannot reach the content store", nil),
	}
	p := NewPipeline(uploader, logger.NewNoop())

	pending := []*PendingUpload{
		p.Stage("a.png", []byte("111")),
		p.Stage("b.png", []byte("222")),
	}

	refs, err := p.UploadAndResolve(context.Background(), pending)
	if err == nil {
		t.Fatal("Expected batch failure to surface")
	}
	if refs != nil {
		t.Errorf("Expected no refs on failure, got %v", refs)
	}
	if KindOf(err) != KindNetwork {
		t.Errorf("Expected network kind, got %s", KindOf(err))
	}
}

func TestResolveInlineSkipsNetwork(t *testing.T) {
	uploader := &fakeUploader{}
	p := NewPipeline(uploader, logger.NewNoop())

	pending := []*PendingUpload{
		p.Stage("a.png", []byte("111")),
		p.Stage("b.png", []byte("222")),
	}

	refs, err := p.Resolve(context.Background(), DestinationInline, pending)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("Expected 2 refs, got %d", len(refs))
	}
	for i, ref := range refs {
		if !strings.HasPrefix(ref, "data:") {
			t.Errorf("Ref %d: expected data URI, got %q", i, ref)
		}
	}
	if uploader.gotFiles != nil {
		t.Error("Expected inline resolution to make no upload call")
	}
}

func TestResolveEmpty(t *testing.T) {
	p := NewPipeline(&fakeUploader{}, logger.NewNoop())
	refs, err := p.Resolve(context.Background(), DestinationRemote, nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if refs != nil {
		t.Errorf("Expected no refs for empty input, got %v", refs)
	}
}
