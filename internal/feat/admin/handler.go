package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/foliohq/folio/internal/feat/content"
	"github.com/foliohq/folio/pkg/fl/config"
	"github.com/foliohq/folio/pkg/fl/logger"
	"github.com/go-chi/chi/v5"
)

// Store is the slice of the content gateway the shell consumes directly.
type Store interface {
	CountProjects(ctx context.Context) int
	CountBlogs(ctx context.Context) int
	CountReviews(ctx context.Context) int
	ListReviews(ctx context.Context) []content.ReviewEntry
	GetProject(ctx context.Context, id string) *content.Project
	GetBlog(ctx context.Context, id string) *content.BlogPost
	CreateProject(ctx context.Context, draft content.Project) (content.Project, error)
	UpdateProject(ctx context.Context, id string, draft content.Project) (content.Project, error)
	CreateBlog(ctx context.Context, draft content.BlogPost) (content.BlogPost, error)
	UpdateBlog(ctx context.Context, id string, draft content.BlogPost) (content.BlogPost, error)
}

// Prefs is the preference surface the shell exposes.
type Prefs interface {
	Theme() string
	ToggleTheme(ctx context.Context) (string, error)
}

// Handler routes the operator between the collection views. It contains no
// content logic of its own; every operation is delegated to a view-model,
// form controller, or the upload pipeline.
type Handler struct {
	store     Store
	prefs     Prefs
	projects  *content.Collection[content.Project]
	blogs     *content.Collection[content.BlogPost]
	slides    *content.Collection[content.SlideImage]
	pipeline  *content.Pipeline
	sessionMw func(http.Handler) http.Handler
	cfg       *config.Config
	log       logger.Logger
}

// NewHandler creates the admin shell over its collaborators.
func NewHandler(
	store Store,
	prefs Prefs,
	projects *content.Collection[content.Project],
	blogs *content.Collection[content.BlogPost],
	slides *content.Collection[content.SlideImage],
	pipeline *content.Pipeline,
	sessionMw func(http.Handler) http.Handler,
	cfg *config.Config,
	log logger.Logger,
) *Handler {
	return &Handler{
		store:     store,
		prefs:     prefs,
		projects:  projects,
		blogs:     blogs,
		slides:    slides,
		pipeline:  pipeline,
		sessionMw: sessionMw,
		cfg:       cfg,
		log:       log,
	}
}

// Start initializes the handler.
func (h *Handler) Start(ctx context.Context) error {
	h.log.Info("Admin handler started")
	return nil
}

// Stop unmounts the collection view-models so late results are not applied.
func (h *Handler) Stop(ctx context.Context) error {
	h.projects.Close()
	h.blogs.Close()
	h.slides.Close()
	return nil
}

// RegisterRoutes registers the admin routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	h.log.Info("Registering admin routes")

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.sessionMw)

		r.Get("/dashboard", h.HandleDashboard)
		r.Get("/theme", h.HandleGetTheme)
		r.Post("/theme/toggle", h.HandleToggleTheme)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.HandleListProjects)
			r.Post("/", h.HandleCreateProject)
			r.Put("/{id}", h.HandleUpdateProject)
			r.Delete("/{id}", h.HandleDeleteProject)
		})

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", h.HandleListBlogs)
			r.Post("/", h.HandleCreateBlog)
			r.Put("/{id}", h.HandleUpdateBlog)
			r.Delete("/{id}", h.HandleDeleteBlog)
		})

		r.Route("/slideshow", func(r chi.Router) {
			r.Get("/", h.HandleListSlides)
			r.Post("/", h.HandleUploadSlides)
			r.Delete("/{id}", h.HandleDeleteSlide)
		})

		r.Get("/reviews", h.HandleListReviews)
	})
}

// --- Dashboard & preferences ---

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jsonOK(w, map[string]int{
		"projects": h.store.CountProjects(ctx),
		"blogs":    h.store.CountBlogs(ctx),
		"reviews":  h.store.CountReviews(ctx),
	})
}

func (h *Handler) HandleGetTheme(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]string{"theme": h.prefs.Theme()})
}

func (h *Handler) HandleToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.prefs.ToggleTheme(r.Context())
	if err != nil {
		h.log.Errorf("Cannot toggle theme: %v", err)
		jsonError(w, http.StatusInternalServerError, "Cannot persist theme preference")
		return
	}
	jsonOK(w, map[string]string{"theme": theme})
}

// --- Projects ---

func (h *Handler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	h.projects.Load(r.Context())
	jsonOK(w, h.projects.Snapshot())
}

func (h *Handler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	form := content.NewForm(h.projectFormSpec(), h.pipeline, h.log)
	defer form.Discard()

	if !h.populateProjectForm(w, r, form) {
		return
	}

	result, err := form.Submit(r.Context())
	if err != nil {
		h.submitError(w, "create project", err)
		return
	}
	h.projects.Commit(result)
	jsonCreated(w, result.Item)
}

func (h *Handler) HandleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing := h.store.GetProject(r.Context(), id)
	if existing == nil {
		jsonError(w, http.StatusNotFound, "Project not found")
		return
	}

	form := content.NewForm(h.projectFormSpec(), h.pipeline, h.log)
	defer form.Discard()
	form.InitFor(existing)

	if !h.populateProjectForm(w, r, form) {
		return
	}

	result, err := form.Submit(r.Context())
	if err != nil {
		h.submitError(w, "update project", err)
		return
	}
	h.projects.Commit(result)
	jsonOK(w, result.Item)
}

func (h *Handler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		jsonError(w, statusFor(err), content.DisplayMessage(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) projectFormSpec() content.FormSpec[content.Project] {
	return content.ProjectFormSpec(h.store.CreateProject, h.store.UpdateProject)
}

func (h *Handler) populateProjectForm(w http.ResponseWriter, r *http.Request, form *content.Form[content.Project]) bool {
	if !h.parseForm(w, r) {
		return false
	}
	h.setFields(form.SetField, r, "name", "description")
	h.detachMarked(r, func(i int) { form.DetachPersisted(content.SlotGallery, i) })
	return h.attachFiles(w, r, "images", func(name string, data []byte) {
		form.AttachFile(content.SlotGallery, name, data)
	})
}

// --- Blogs ---

func (h *Handler) HandleListBlogs(w http.ResponseWriter, r *http.Request) {
	h.blogs.Load(r.Context())
	jsonOK(w, h.blogs.Snapshot())
}

func (h *Handler) HandleCreateBlog(w http.ResponseWriter, r *http.Request) {
	form := content.NewForm(h.blogFormSpec(), h.pipeline, h.log)
	defer form.Discard()

	if !h.populateBlogForm(w, r, form) {
		return
	}

	result, err := form.Submit(r.Context())
	if err != nil {
		h.submitError(w, "create blog", err)
		return
	}
	h.blogs.Commit(result)
	jsonCreated(w, result.Item)
}

func (h *Handler) HandleUpdateBlog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing := h.store.GetBlog(r.Context(), id)
	if existing == nil {
		jsonError(w, http.StatusNotFound, "Blog not found")
		return
	}

	form := content.NewForm(h.blogFormSpec(), h.pipeline, h.log)
	defer form.Discard()
	form.InitFor(existing)

	if !h.populateBlogForm(w, r, form) {
		return
	}

	result, err := form.Submit(r.Context())
	if err != nil {
		h.submitError(w, "update blog", err)
		return
	}
	h.blogs.Commit(result)
	jsonOK(w, result.Item)
}

func (h *Handler) HandleDeleteBlog(w http.ResponseWriter, r *http.Request) {
	if err := h.blogs.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		jsonError(w, statusFor(err), content.DisplayMessage(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) blogFormSpec() content.FormSpec[content.BlogPost] {
	return content.BlogFormSpec(h.store.CreateBlog, h.store.UpdateBlog)
}

func (h *Handler) populateBlogForm(w http.ResponseWriter, r *http.Request, form *content.Form[content.BlogPost]) bool {
	if !h.parseForm(w, r) {
		return false
	}
	h.setFields(form.SetField, r, "title", "excerpt")
	if r.FormValue("removeCover") == "true" {
		form.DetachPersisted(content.SlotCover, 0)
	}
	h.detachMarked(r, func(i int) { form.DetachPersisted(content.SlotGallery, i) })
	if !h.attachFiles(w, r, "cover", func(name string, data []byte) {
		form.AttachFile(content.SlotCover, name, data)
	}) {
		return false
	}
	return h.attachFiles(w, r, "images", func(name string, data []byte) {
		form.AttachFile(content.SlotGallery, name, data)
	})
}

// --- Slideshow ---

func (h *Handler) HandleListSlides(w http.ResponseWriter, r *http.Request) {
	h.slides.Load(r.Context())
	jsonOK(w, h.slides.Snapshot())
}

// HandleUploadSlides stages the posted files, uploads them as one atomic
// batch, and commits each returned descriptor to the slideshow collection.
func (h *Handler) HandleUploadSlides(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	var staged []*content.PendingUpload
	ok := h.attachFiles(w, r, "images", func(name string, data []byte) {
		staged = append(staged, h.pipeline.Stage(name, data))
	})
	defer func() {
		for _, pu := range staged {
			pu.Preview().Release()
		}
	}()
	if !ok {
		return
	}
	if len(staged) == 0 {
		jsonError(w, http.StatusUnprocessableEntity, "Select at least one image to upload")
		return
	}

	refs, err := h.pipeline.UploadAndResolve(r.Context(), staged)
	if err != nil {
		h.submitError(w, "upload slides", err)
		return
	}

	slides := make([]content.SlideImage, 0, len(refs))
	for _, ref := range refs {
		slide := content.SlideImage{ID: ref.ID, URL: ref.URL}
		h.slides.Commit(content.Result[content.SlideImage]{Item: slide, Created: true})
		slides = append(slides, slide)
	}
	jsonCreated(w, slides)
}

func (h *Handler) HandleDeleteSlide(w http.ResponseWriter, r *http.Request) {
	if err := h.slides.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		jsonError(w, statusFor(err), content.DisplayMessage(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Reviews ---

func (h *Handler) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{"items": h.store.ListReviews(r.Context())})
}

// --- Helpers ---

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	limit := h.cfg.Remote.UploadLimitMB << 20
	if err := r.ParseMultipartForm(limit); err != nil {
		if err == http.ErrNotMultipart {
			if err := r.ParseForm(); err != nil {
				jsonError(w, http.StatusBadRequest, "Cannot parse form")
				return false
			}
			return true
		}
		h.log.Errorf("Cannot parse multipart form: %v", err)
		jsonError(w, http.StatusBadRequest, "Cannot parse form")
		return false
	}
	return true
}

func (h *Handler) setFields(set func(name, value string) error, r *http.Request, names ...string) {
	for _, name := range names {
		if values, ok := r.Form[name]; ok && len(values) > 0 {
			if err := set(name, values[0]); err != nil {
				h.log.Errorf("Cannot set form field %s: %v", name, err)
			}
		}
	}
}

// detachMarked applies persisted-reference omissions, highest index first so
// earlier removals don't shift later ones.
func (h *Handler) detachMarked(r *http.Request, detach func(index int)) {
	values := r.Form["detach"]
	indexes := make([]int, 0, len(values))
	for _, v := range values {
		if i, err := strconv.Atoi(v); err == nil {
			indexes = append(indexes, i)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indexes)))
	for _, i := range indexes {
		detach(i)
	}
}

func (h *Handler) attachFiles(w http.ResponseWriter, r *http.Request, field string, attach func(name string, data []byte)) bool {
	if r.MultipartForm == nil {
		return true
	}
	for _, header := range r.MultipartForm.File[field] {
		file, err := header.Open()
		if err != nil {
			h.log.Errorf("Cannot open uploaded file %s: %v", header.Filename, err)
			jsonError(w, http.StatusBadRequest, "Cannot read uploaded file")
			return false
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.log.Errorf("Cannot read uploaded file %s: %v", header.Filename, err)
			jsonError(w, http.StatusBadRequest, "Cannot read uploaded file")
			return false
		}
		attach(header.Filename, data)
	}
	return true
}

func (h *Handler) submitError(w http.ResponseWriter, op string, err error) {
	h.log.Errorf("%s failed (%s): %v", op, content.KindOf(err), err)
	jsonError(w, statusFor(err), content.DisplayMessage(err))
}

func statusFor(err error) int {
	switch content.KindOf(err) {
	case content.KindValidation:
		return http.StatusUnprocessableEntity
	case content.KindNotFound:
		return http.StatusNotFound
	case content.KindNetwork, content.KindServerRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}

func jsonCreated(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
