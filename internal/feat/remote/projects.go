package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/foliohq/folio/internal/feat/content"
)

// ListProjects fetches all projects. Fail-soft.
func (c *Client) ListProjects(ctx context.Context) []content.Project {
	return listOf[content.Project](ctx, c, "projects")
}

// GetProject fetches one project by id. Returns nil when absent or on any
// read failure.
func (c *Client) GetProject(ctx context.Context, id string) *content.Project {
	return getOne[content.Project](ctx, c, "projects/"+url.PathEscape(id))
}

// CountProjects fetches the total project count, zero on failure.
func (c *Client) CountProjects(ctx context.Context) int {
	return c.countOf(ctx, "projects/count")
}

// CreateProject persists a new project and returns the store's copy, which
// carries the issued id.
func (c *Client) CreateProject(ctx context.Context, draft content.Project) (content.Project, error) {
	const op = "create project"
	var created content.Project
	if err := c.writeJSON(ctx, op, http.MethodPost, "projects", draft, &created); err != nil {
		return content.Project{}, err
	}
	if err := requireID(op, created.ID); err != nil {
		return content.Project{}, err
	}
	return created, nil
}

// UpdateProject replaces an existing project and returns the store's copy.
func (c *Client) UpdateProject(ctx context.Context, id string, draft content.Project) (content.Project, error) {
	const op = "update project"
	var updated content.Project
	if err := c.writeJSON(ctx, op, http.MethodPut, "projects/"+url.PathEscape(id), draft, &updated); err != nil {
		return content.Project{}, err
	}
	if err := requireID(op, updated.ID); err != nil {
		return content.Project{}, err
	}
	return updated, nil
}

// DeleteProject removes a project by id.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.writeJSON(ctx, "delete project", http.MethodDelete, "projects/"+url.PathEscape(id), nil, nil)
}
