package content

import (
	"context"
	"fmt"

	"github.com/foliohq/folio/pkg/fl/logger"
	"github.com/foliohq/folio/pkg/fl/validation"
)

// Slot identifies which image role a file attaches to.
type Slot string

const (
	// SlotCover holds a single image; attaching replaces the previous one.
	SlotCover Slot = "cover"
	// SlotGallery holds an ordered list; attaching appends.
	SlotGallery Slot = "gallery"
)

func slotReplaces(slot Slot) bool {
	return slot == SlotCover
}

// Result is the outcome of a successful form submission, ready to be passed
// to Collection.Commit.
type Result[T Item] struct {
	Item    T
	Created bool
}

// FormSpec describes one entity variant to the form controller: defaults,
// field setters, validation, how resolved image references apply to the
// draft, and the gateway create/update operations.
type FormSpec[T Item] struct {
	New         func() T
	Fields      map[string]func(draft *T, value string)
	Validate    func(draft T) validation.ValidationErrors
	Attach      func(draft T, slot Slot, refs []string) T
	Detach      func(draft T, slot Slot, index int) T
	Destination Destination
	Create      func(ctx context.Context, draft T) (T, error)
	Update      func(ctx context.Context, id string, draft T) (T, error)
}

// Form owns exactly one draft entity and mediates its submission. A draft is
// created on add or edit and discarded on successful submit or explicit
// cancel; a failed submit leaves the draft intact so the operator can retry
// without re-entering data.
type Form[T Item] struct {
	spec     FormSpec[T]
	pipeline *Pipeline
	log      logger.Logger

	draft   T
	editID  string
	dirty   map[string]bool
	pending map[Slot][]*PendingUpload
}

// NewForm creates a form controller in create mode.
func NewForm[T Item](spec FormSpec[T], pipeline *Pipeline, log logger.Logger) *Form[T] {
	f := &Form[T]{spec: spec, pipeline: pipeline, log: log}
	f.InitFor(nil)
	return f
}

// InitFor resets the form: a non-nil existing item enters edit mode with
// fields pre-populated, nil enters create mode with type defaults. Any
// previously staged attachments are released.
func (f *Form[T]) InitFor(existing *T) {
	f.releasePending()
	f.dirty = make(map[string]bool)
	f.pending = make(map[Slot][]*PendingUpload)

	if existing == nil {
		f.draft = f.spec.New()
		f.editID = ""
		return
	}
	f.draft = *existing
	f.editID = (*existing).ItemID()
}

// EditMode reports whether the draft targets an existing item.
func (f *Form[T]) EditMode() bool {
	return f.editID != ""
}

// Draft returns the current draft value.
func (f *Form[T]) Draft() T {
	return f.draft
}

// SetField applies a local field mutation. No network I/O, no validation;
// the field is only marked dirty.
func (f *Form[T]) SetField(name, value string) error {
	setter, ok := f.spec.Fields[name]
	if !ok {
		return fmt.Errorf("unknown field %q", name)
	}
	setter(&f.draft, value)
	f.dirty[name] = true
	return nil
}

// IsDirty reports whether a field has been touched since init.
func (f *Form[T]) IsDirty(name string) bool {
	return f.dirty[name]
}

// AttachFile stages a local file for the given slot, generating its preview
// synchronously. The cover slot replaces any staged file (releasing its
// preview); the gallery slot appends.
func (f *Form[T]) AttachFile(slot Slot, name string, data []byte) *PendingUpload {
	pu := f.pipeline.Stage(name, data)
	if slotReplaces(slot) {
		for _, old := range f.pending[slot] {
			old.Preview().Release()
		}
		f.pending[slot] = []*PendingUpload{pu}
		return pu
	}
	f.pending[slot] = append(f.pending[slot], pu)
	return pu
}

// DetachPending removes a staged attachment by slot position and releases
// its preview.
func (f *Form[T]) DetachPending(slot Slot, index int) {
	staged := f.pending[slot]
	if index < 0 || index >= len(staged) {
		return
	}
	staged[index].Preview().Release()
	f.pending[slot] = append(staged[:index], staged[index+1:]...)
}

// DetachPersisted marks an already-persisted image reference for omission on
// the next submit. It never deletes the remote sub-resource itself; that is
// the caller's explicit separate action.
func (f *Form[T]) DetachPersisted(slot Slot, index int) {
	f.draft = f.spec.Detach(f.draft, slot, index)
}

// Pending returns the staged attachments for a slot.
func (f *Form[T]) Pending(slot Slot) []*PendingUpload {
	return f.pending[slot]
}

// Submit validates the draft, resolves staged attachments through the upload
// pipeline, and commits via the gateway. Validation failures surface before
// any network call; zero attachments is always valid. On success the draft is
// discarded and the completed item returned; on failure the draft (and its
// staged attachments) survive untouched.
func (f *Form[T]) Submit(ctx context.Context) (Result[T], error) {
	var zero Result[T]

	if f.spec.Validate != nil {
		if verrs := f.spec.Validate(f.draft); verrs.HasErrors() {
			return zero, verrs
		}
	}

	submitted := f.draft
	for _, slot := range []Slot{SlotCover, SlotGallery} {
		staged := f.pending[slot]
		if len(staged) == 0 {
			continue
		}
		refs, err := f.pipeline.Resolve(ctx, f.spec.Destination, staged)
		if err != nil {
			return zero, err
		}
		submitted = f.spec.Attach(submitted, slot, refs)
	}

	var (
		item    T
		err     error
		created bool
	)
	if f.EditMode() {
		item, err = f.spec.Update(ctx, f.editID, submitted)
	} else {
		item, err = f.spec.Create(ctx, submitted)
		created = true
	}
	if err != nil {
		return zero, err
	}

	f.resetAfterSubmit()
	return Result[T]{Item: item, Created: created}, nil
}

// Discard cancels the draft, releasing every staged preview, and returns the
// form to create mode.
func (f *Form[T]) Discard() {
	f.InitFor(nil)
}

func (f *Form[T]) resetAfterSubmit() {
	f.releasePending()
	f.pending = make(map[Slot][]*PendingUpload)
	f.dirty = make(map[string]bool)
	f.draft = f.spec.New()
	f.editID = ""
}

func (f *Form[T]) releasePending() {
	for _, staged := range f.pending {
		for _, pu := range staged {
			pu.Preview().Release()
		}
	}
}
