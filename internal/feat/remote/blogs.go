package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/foliohq/folio/internal/feat/content"
)

// ListBlogs fetches all blog posts. Fail-soft.
func (c *Client) ListBlogs(ctx context.Context) []content.BlogPost {
	return listOf[content.BlogPost](ctx, c, "blogs")
}

// GetBlog fetches one blog post by id. Returns nil when absent or on any
// read failure.
func (c *Client) GetBlog(ctx context.Context, id string) *content.BlogPost {
	return getOne[content.BlogPost](ctx, c, "blogs/"+url.PathEscape(id))
}

// CountBlogs fetches the total blog count, zero on failure.
func (c *Client) CountBlogs(ctx context.Context) int {
	return c.countOf(ctx, "blogs/count")
}

// CreateBlog persists a new blog post and returns the store's copy, which
// carries the issued id.
func (c *Client) CreateBlog(ctx context.Context, draft content.BlogPost) (content.BlogPost, error) {
	const op = "create blog"
	var created content.BlogPost
	if err := c.writeJSON(ctx, op, http.MethodPost, "blogs", draft, &created); err != nil {
		return content.BlogPost{}, err
	}
	if err := requireID(op, created.ID); err != nil {
		return content.BlogPost{}, err
	}
	return created, nil
}

// UpdateBlog replaces an existing blog post and returns the store's copy.
func (c *Client) UpdateBlog(ctx context.Context, id string, draft content.BlogPost) (content.BlogPost, error) {
	const op = "update blog"
	var updated content.BlogPost
	if err := c.writeJSON(ctx, op, http.MethodPut, "blogs/"+url.PathEscape(id), draft, &updated); err != nil {
		return content.BlogPost{}, err
	}
	if err := requireID(op, updated.ID); err != nil {
		return content.BlogPost{}, err
	}
	return updated, nil
}

// DeleteBlog removes a blog post by id.
func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	return c.writeJSON(ctx, "delete blog", http.MethodDelete, "blogs/"+url.PathEscape(id), nil, nil)
}
