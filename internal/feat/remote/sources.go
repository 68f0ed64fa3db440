package remote

import (
	"context"

	"github.com/foliohq/folio/internal/feat/content"
)

// Projects returns the collection source for project view-models.
func (c *Client) Projects() content.Source[content.Project] {
	return projectSource{c}
}

// Blogs returns the collection source for blog view-models.
func (c *Client) Blogs() content.Source[content.BlogPost] {
	return blogSource{c}
}

// Slides returns the collection source for slideshow view-models.
func (c *Client) Slides() content.Source[content.SlideImage] {
	return slideSource{c}
}

type projectSource struct{ c *Client }

func (s projectSource) List(ctx context.Context) []content.Project {
	return s.c.ListProjects(ctx)
}

func (s projectSource) Delete(ctx context.Context, id string) error {
	return s.c.DeleteProject(ctx, id)
}

type blogSource struct{ c *Client }

func (s blogSource) List(ctx context.Context) []content.BlogPost {
	return s.c.ListBlogs(ctx)
}

func (s blogSource) Delete(ctx context.Context, id string) error {
	return s.c.DeleteBlog(ctx, id)
}

type slideSource struct{ c *Client }

func (s slideSource) List(ctx context.Context) []content.SlideImage {
	return s.c.ListSlides(ctx)
}

func (s slideSource) Delete(ctx context.Context, id string) error {
	return s.c.DeleteSlide(ctx, id)
}
