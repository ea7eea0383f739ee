// Package service implements the announcement board: public reads, staff
// CRUD, and optional images stored in MinIO.
package service

import (
	"context"
	"io"

	"barangay_portal_backend/internal/announcements/repository"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const imageFolder = "announcements"

// ImageStore is the slice of object storage the board needs.
type ImageStore interface {
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	DeleteObject(ctx context.Context, bucket, fileKey string) error
	GenerateSignedURL(ctx context.Context, bucket, fileKey string) (string, error)
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

type Service struct {
	repo   repository.Repository
	store  ImageStore
	bucket string
	log    *logger.Logger
}

func New(repo repository.Repository, store ImageStore, bucket string, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, bucket: bucket, log: log}
}

// CreateParams carries a staff create request.
type CreateParams struct {
	Title    string
	Body     string
	Category string
	Image    *ImageUpload
}

// UpdateParams carries a staff update request.
type UpdateParams struct {
	Title      *string
	Body       *string
	Category   *string
	Image      *ImageUpload
	ClearImage bool
}

// ImageUpload is an incoming image file.
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// View is an announcement with its image resolved to a signed URL.
type View struct {
	repository.Announcement
	ImageURL *string
}

// Create stores an announcement, uploading the image first when present.
func (s *Service) Create(ctx context.Context, params CreateParams) (*View, error) {
	if params.Title == "" {
		return nil, apperr.Validation("title is required")
	}
	if params.Body == "" {
		return nil, apperr.Validation("body is required")
	}
	if params.Category == "" {
		params.Category = "general"
	}

	var imageKey *string
	if params.Image != nil {
		key, err := s.uploadImage(ctx, params.Image)
		if err != nil {
			return nil, err
		}
		imageKey = &key
	}

	a, err := s.repo.Create(ctx, repository.CreateParams{
		Title:    params.Title,
		Body:     params.Body,
		Category: params.Category,
		ImageKey: imageKey,
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, a), nil
}

// Update applies partial changes. A new image replaces the old object;
// ClearImage removes it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*View, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	repoParams := repository.UpdateParams{
		Title:    params.Title,
		Body:     params.Body,
		Category: params.Category,
	}

	var staleKey *string
	switch {
	case params.Image != nil:
		key, err := s.uploadImage(ctx, params.Image)
		if err != nil {
			return nil, err
		}
		repoParams.ImageKey = &key
		repoParams.ImageKeySet = true
		staleKey = current.ImageKey
	case params.ClearImage:
		repoParams.ImageKey = nil
		repoParams.ImageKeySet = true
		staleKey = current.ImageKey
	}

	updated, err := s.repo.Update(ctx, id, repoParams)
	if err != nil {
		return nil, err
	}

	if staleKey != nil {
		if err := s.store.DeleteObject(ctx, s.bucket, *staleKey); err != nil {
			s.log.Error("failed to delete replaced announcement image", "key", *staleKey, "error", err)
		}
	}
	return s.view(ctx, updated), nil
}

// Delete removes an announcement and its image object, if any.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if a.ImageKey != nil {
		if err := s.store.DeleteObject(ctx, s.bucket, *a.ImageKey); err != nil {
			s.log.Error("failed to delete announcement image", "key", *a.ImageKey, "error", err)
		}
	}
	return nil
}

// Get loads one announcement for the public board.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, a), nil
}

// List pages the public board, newest first.
func (s *Service) List(ctx context.Context, filters repository.ListFilters) ([]View, int, error) {
	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	views := make([]View, 0, len(items))
	for i := range items {
		views = append(views, *s.view(ctx, &items[i]))
	}
	return views, total, nil
}

func (s *Service) uploadImage(ctx context.Context, img *ImageUpload) (string, error) {
	if err := s.store.ValidateContentType(img.ContentType); err != nil {
		return "", err
	}
	if err := s.store.ValidateFileSize(img.Size); err != nil {
		return "", err
	}
	return s.store.UploadFile(ctx, s.bucket, imageFolder, img.FileName, img.ContentType, img.Reader, img.Size)
}

// view resolves the image key to a signed URL. A signing failure degrades
// to a missing image rather than failing the read.
func (s *Service) view(ctx context.Context, a *repository.Announcement) *View {
	v := &View{Announcement: *a}
	if a.ImageKey != nil {
		url, err := s.store.GenerateSignedURL(ctx, s.bucket, *a.ImageKey)
		if err != nil {
			s.log.Error("failed to sign announcement image url", "key", *a.ImageKey, "error", err)
		} else {
			v.ImageURL = &url
		}
	}
	return v
}
