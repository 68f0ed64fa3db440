package content

// ItemKind tags the concrete variant of a content item.
type ItemKind string

const (
	KindProject ItemKind = "project"
	KindBlog    ItemKind = "blog"
	KindReview  ItemKind = "review"
	KindSlide   ItemKind = "slide"
)

// Item is the capability shared by every content variant: a store-issued
// identifier plus a variant tag. Ids are assigned by the remote store on
// creation; the client never fabricates one.
type Item interface {
	ItemID() string
	ItemKind() ItemKind
}

// Project is a portfolio project with an ordered gallery of image references.
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Images      []string `json:"images,omitempty"`
}

func (p Project) ItemID() string     { return p.ID }
func (p Project) ItemKind() ItemKind { return KindProject }

// BlogPost is a blog entry with an optional cover image and an ordered
// sequence of additional images.
type BlogPost struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Excerpt          string   `json:"excerpt"`
	CoverImage       string   `json:"coverImage,omitempty"`
	AdditionalImages []string `json:"additionalImages,omitempty"`
}

func (b BlogPost) ItemID() string     { return b.ID }
func (b BlogPost) ItemKind() ItemKind { return KindBlog }

// HasCover returns true if the post carries a cover image reference.
func (b BlogPost) HasCover() bool {
	return b.CoverImage != ""
}

// ReviewEntry is a visitor review. Read-only from the admin's perspective.
type ReviewEntry struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

func (r ReviewEntry) ItemID() string     { return r.ID }
func (r ReviewEntry) ItemKind() ItemKind { return KindReview }

// SlideImage is one remote-hosted slideshow image.
type SlideImage struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (s SlideImage) ItemID() string     { return s.ID }
func (s SlideImage) ItemKind() ItemKind { return KindSlide }
