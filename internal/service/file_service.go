package service

import (
	"context"
	"io"

	"github.com/edusync/edusync-portal/internal/edusync"
	"github.com/edusync/edusync-portal/internal/model"
	"github.com/edusync/edusync-portal/internal/session"
)

// FileService proxies uploads and downloads to the EduSync file store.
type FileService struct {
	api Upstream
}

// NewFileService creates a new FileService.
func NewFileService(api Upstream) *FileService {
	return &FileService{api: api}
}

// Upload stores a file. Instructors only.
func (s *FileService) Upload(ctx context.Context, sc *session.Context, filename string, r io.Reader) (*model.UploadResponse, error) {
	if _, err := requireInstructor(sc); err != nil {
		return nil, err
	}
	api := clientFor(s.api, sc)
	up, err := api.UploadFile(ctx, filename, r)
	if err != nil {
		return nil, err
	}
	return &model.UploadResponse{URL: up.URL, BlobName: up.BlobName, DownloadURL: api.DownloadURL(up.BlobName)}, nil
}

// Download opens a stored file. The caller closes the body.
func (s *FileService) Download(ctx context.Context, sc *session.Context, blobName string) (*edusync.Download, error) {
	if _, ok := sc.Current(); !ok {
		return nil, ErrAccessDenied
	}
	return clientFor(s.api, sc).Download(ctx, blobName)
}
