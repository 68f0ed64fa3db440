package remote

import (
	"context"

	"github.com/foliohq/folio/internal/feat/content"
)

// ListReviews fetches all visitor reviews. Fail-soft. Reviews are read-only
// from the admin's perspective.
func (c *Client) ListReviews(ctx context.Context) []content.ReviewEntry {
	return listOf[content.ReviewEntry](ctx, c, "reviews")
}

// CountReviews fetches the total review count, zero on failure.
func (c *Client) CountReviews(ctx context.Context) int {
	return c.countOf(ctx, "reviews/count")
}
