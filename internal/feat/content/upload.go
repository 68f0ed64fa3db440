package content

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"

	"github.com/foliohq/folio/pkg/fl/logger"
	"github.com/foliohq/folio/pkg/fl/model"
)

// Destination selects how staged files resolve to image references.
type Destination int

const (
	// DestinationRemote uploads files to the store and resolves to hosted URLs.
	DestinationRemote Destination = iota
	// DestinationInline resolves files to inline data URIs with no network call.
	DestinationInline
)

// UploadFile is one raw file payload sent to the store, tagged with the
// client-assigned correlation token.
type UploadFile struct {
	Token string
	Name  string
	Data  []byte
}

// UploadedRef is the store's descriptor for one uploaded file. Token echoes
// the request token when the store supports correlation.
type UploadedRef struct {
	Token string `json:"token,omitempty"`
	ID    string `json:"id"`
	URL   string `json:"url"`
}

// Uploader is the gateway operation the pipeline depends on.
type Uploader interface {
	UploadBatch(ctx context.Context, files []UploadFile) ([]UploadedRef, error)
}

// PendingUpload is a local file selection staged for upload, owned by the
// form controller until submission.
type PendingUpload struct {
	Token   string
	Name    string
	Data    []byte
	preview *Preview
}

// Preview returns the local preview handle generated at staging time.
func (p *PendingUpload) Preview() *Preview {
	return p.preview
}

// Preview is a local preview handle for a staged file. It must be released
// exactly once; releasing an already-released handle is a no-op.
type Preview struct {
	registry *PreviewRegistry
	uri      string

	mu       sync.Mutex
	released bool
}

// URI returns the displayable data URI, or empty after release.
func (p *Preview) URI() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ""
	}
	return p.uri
}

// Release frees the preview handle. Safe to call more than once.
func (p *Preview) Release() {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.released = true
	p.uri = ""
	p.mu.Unlock()

	if p.registry != nil {
		p.registry.closed()
	}
}

// PreviewRegistry tracks outstanding preview handles so leaks across repeated
// edit sessions are observable.
type PreviewRegistry struct {
	mu   sync.Mutex
	open int
}

func (r *PreviewRegistry) opened() {
	r.mu.Lock()
	r.open++
	r.mu.Unlock()
}

func (r *PreviewRegistry) closed() {
	r.mu.Lock()
	if r.open > 0 {
		r.open--
	}
	r.mu.Unlock()
}

// Open returns the number of preview handles not yet released.
func (r *PreviewRegistry) Open() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

// Pipeline turns staged local files into image references: hosted URLs for
// the remote destination, data URIs for the inline one. Uploads are fire-once
// with atomic batch semantics; retry is always a new user action.
type Pipeline struct {
	uploader Uploader
	registry *PreviewRegistry
	log      logger.Logger
}

// NewPipeline creates a pipeline over the given uploader.
func NewPipeline(uploader Uploader, log logger.Logger) *Pipeline {
	return &Pipeline{
		uploader: uploader,
		registry: &PreviewRegistry{},
		log:      log,
	}
}

// Registry exposes the preview-handle registry.
func (p *Pipeline) Registry() *PreviewRegistry {
	return p.registry
}

// Stage registers a local file selection, generating its correlation token
// and preview handle synchronously.
func (p *Pipeline) Stage(name string, data []byte) *PendingUpload {
	preview := &Preview{
		registry: p.registry,
		uri:      dataURI(data),
	}
	p.registry.opened()

	return &PendingUpload{
		Token:   model.NewCorrelationToken(),
		Name:    name,
		Data:    data,
		preview: preview,
	}
}

// UploadAndResolve sends all pending files as one batch and returns the
// store's descriptors re-aligned to request order. The batch is atomic: any
// failure means nothing is considered attached.
func (p *Pipeline) UploadAndResolve(ctx context.Context, pending []*PendingUpload) ([]UploadedRef, error) {
	if len(pending) == 0 {
		return nil, nil
	}

	files := make([]UploadFile, 0, len(pending))
	for _, pu := range pending {
		files = append(files, UploadFile{Token: pu.Token, Name: pu.Name, Data: pu.Data})
	}

	refs, err := p.uploader.UploadBatch(ctx, files)
	if err != nil {
		return nil, err
	}

	aligned, err := alignRefs(pending, refs)
	if err != nil {
		p.log.Errorf("upload batch could not be aligned: %v", err)
		return nil, err
	}
	return aligned, nil
}

// Resolve turns pending files into image reference strings for the given
// destination. The inline destination never touches the network.
func (p *Pipeline) Resolve(ctx context.Context, dest Destination, pending []*PendingUpload) ([]string, error) {
	if len(pending) == 0 {
		return nil, nil
	}

	if dest == DestinationInline {
		refs := make([]string, 0, len(pending))
		for _, pu := range pending {
			refs = append(refs, dataURI(pu.Data))
		}
		return refs, nil
	}

	uploaded, err := p.UploadAndResolve(ctx, pending)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(uploaded))
	for _, ref := range uploaded {
		refs = append(refs, ref.URL)
	}
	return refs, nil
}

// alignRefs orders store descriptors by the request's correlation tokens.
// The store's response order is treated as unguaranteed. When the store
// echoes no tokens at all, positional order is accepted if counts match.
func alignRefs(pending []*PendingUpload, refs []UploadedRef) ([]UploadedRef, error) {
	byToken := make(map[string]UploadedRef, len(refs))
	tagged := 0
	for _, ref := range refs {
		if ref.Token != "" {
			byToken[ref.Token] = ref
			tagged++
		}
	}

	if tagged == 0 {
		if len(refs) != len(pending) {
			return nil, fmt.Errorf("store returned %d descriptors for %d files without correlation tokens", len(refs), len(pending))
		}
		return refs, nil
	}

	aligned := make([]UploadedRef, 0, len(pending))
	for _, pu := range pending {
		ref, ok := byToken[pu.Token]
		if !ok {
			return nil, fmt.Errorf("store returned no descriptor for file %q", pu.Name)
		}
		aligned = append(aligned, ref)
	}
	return aligned, nil
}

func dataURI(data []byte) string {
	mime := http.DetectContentType(data)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))
}
