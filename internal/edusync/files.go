package edusync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Download is a streaming file body. The caller must close Body.
type Download struct {
	Body               io.ReadCloser
	ContentType        string
	ContentDisposition string
	ContentLength      int64
}

// UploadFile sends r as the multipart field "file". The body is streamed
// through a pipe so large files are never buffered whole.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) (*UploadResult, error) {
	const op, fallback = "upload file", "File upload failed. Please try again."

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/files/upload", pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, &APIError{Op: op, Message: fallback, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.send(req, op, fallback)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, err
	}
	defer resp.Body.Close()

	var out UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Message: fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &out, nil
}

// DownloadURL returns the API URL serving blobName as an attachment, or ""
// for an empty name.
func (c *Client) DownloadURL(blobName string) string {
	if blobName == "" {
		return ""
	}
	return c.baseURL + "/api/files/download/" + escapeBlob(blobName)
}

// Download opens the attachment stream for blobName.
func (c *Client) Download(ctx context.Context, blobName string) (*Download, error) {
	const op = "download file"
	fallback := fmt.Sprintf("Failed to download %s. Please try again.", blobName)
	if blobName == "" {
		return nil, &APIError{Op: op, StatusCode: http.StatusBadRequest, Message: "Blob name is required."}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(blobName), nil)
	if err != nil {
		return nil, &APIError{Op: op, Message: fallback, Err: err}
	}
	resp, err := c.send(req, op, fallback)
	if err != nil {
		return nil, err
	}
	return &Download{
		Body:               resp.Body,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		ContentLength:      resp.ContentLength,
	}, nil
}

// escapeBlob escapes each path segment, keeping the separators.
func escapeBlob(name string) string {
	parts := strings.Split(strings.TrimLeft(name, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
