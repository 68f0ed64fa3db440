package remote

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/foliohq/folio/internal/feat/content"
)

// ListSlides fetches the slideshow images. Fail-soft.
func (c *Client) ListSlides(ctx context.Context) []content.SlideImage {
	return listOf[content.SlideImage](ctx, c, "slideshow")
}

// UploadBatch posts raw file payloads as one multipart request. Each file
// part rides with its correlation token so the store can echo it back; the
// response order is treated as unguaranteed by callers.
func (c *Client) UploadBatch(ctx context.Context, files []content.UploadFile) ([]content.UploadedRef, error) {
	const op = "upload images"

	if len(files) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, f := range files {
		if err := writer.WriteField("tokens", f.Token); err != nil {
			return nil, content.NewStoreError(content.KindUnknown, op, "Could not encode the upload.", err)
		}
		part, err := writer.CreateFormFile("images", f.Name)
		if err != nil {
			return nil, content.NewStoreError(content.KindUnknown, op, "Could not encode the upload.", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, content.NewStoreError(content.KindUnknown, op, "Could not encode the upload.", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, content.NewStoreError(content.KindUnknown, op, "Could not encode the upload.", err)
	}

	var refs []content.UploadedRef
	if err := c.write(ctx, op, http.MethodPost, "slideshow/upload", &buf, writer.FormDataContentType(), &refs); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, content.NewStoreError(content.KindServerRejected, op,
			fmt.Sprintf("The content store returned no descriptors for %d uploaded file(s).", len(files)), nil)
	}
	return refs, nil
}

// DeleteSlide removes a slideshow image by id.
func (c *Client) DeleteSlide(ctx context.Context, id string) error {
	return c.writeJSON(ctx, "delete image", http.MethodDelete, "slideshow/delete/"+url.PathEscape(id), nil, nil)
}
