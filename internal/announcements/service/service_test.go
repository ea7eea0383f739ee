package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"barangay_portal_backend/internal/announcements/repository"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeAnnouncementRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*repository.Announcement
}

func newFakeAnnouncementRepo() *fakeAnnouncementRepo {
	return &fakeAnnouncementRepo{items: map[uuid.UUID]*repository.Announcement{}}
}

func (f *fakeAnnouncementRepo) Create(_ context.Context, params repository.CreateParams) (*repository.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := &repository.Announcement{
		ID:        uuid.New(),
		Title:     params.Title,
		Body:      params.Body,
		Category:  params.Category,
		ImageKey:  params.ImageKey,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.items[a.ID] = a
	clone := *a
	return &clone, nil
}

func (f *fakeAnnouncementRepo) FindByID(_ context.Context, id uuid.UUID) (*repository.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, apperr.NotFound("announcement not found")
	}
	clone := *a
	return &clone, nil
}

func (f *fakeAnnouncementRepo) Update(_ context.Context, id uuid.UUID, params repository.UpdateParams) (*repository.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.items[id]
	if !ok {
		return nil, apperr.NotFound("announcement not found")
	}
	if params.Title != nil {
		a.Title = *params.Title
	}
	if params.Body != nil {
		a.Body = *params.Body
	}
	if params.Category != nil {
		a.Category = *params.Category
	}
	if params.ImageKeySet {
		a.ImageKey = params.ImageKey
	}
	a.UpdatedAt = time.Now()
	clone := *a
	return &clone, nil
}

func (f *fakeAnnouncementRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperr.NotFound("announcement not found")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeAnnouncementRepo) List(_ context.Context, _ repository.ListFilters) ([]repository.Announcement, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]repository.Announcement, 0, len(f.items))
	for _, a := range f.items {
		items = append(items, *a)
	}
	return items, len(items), nil
}

type fakeImageStore struct {
	mu       sync.Mutex
	uploads  map[string][]byte
	deleted  []string
	rejected bool
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{uploads: map[string][]byte{}}
}

func (f *fakeImageStore) UploadFile(_ context.Context, _, folder, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("%s/%s-%s", folder, uuid.NewString(), fileName)
	f.uploads[key] = content
	return key, nil
}

func (f *fakeImageStore) DeleteObject(_ context.Context, _, fileKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.uploads, fileKey)
	f.deleted = append(f.deleted, fileKey)
	return nil
}

func (f *fakeImageStore) GenerateSignedURL(_ context.Context, bucket, fileKey string) (string, error) {
	return fmt.Sprintf("https://storage.test/%s/%s?sig=abc", bucket, fileKey), nil
}

func (f *fakeImageStore) ValidateContentType(contentType string) error {
	if f.rejected || !strings.HasPrefix(contentType, "image/") {
		return apperr.Validation("file type not allowed")
	}
	return nil
}

func (f *fakeImageStore) ValidateFileSize(sizeBytes int64) error {
	if sizeBytes <= 0 || sizeBytes > 1<<20 {
		return apperr.Validation("file size out of range")
	}
	return nil
}

func newTestService() (*Service, *fakeAnnouncementRepo, *fakeImageStore) {
	repo := newFakeAnnouncementRepo()
	store := newFakeImageStore()
	return New(repo, store, "announcement-images", logger.New("development")), repo, store
}

func imageUpload() *ImageUpload {
	return &ImageUpload{
		FileName:    "fiesta.jpg",
		ContentType: "image/jpeg",
		Size:        2048,
		Reader:      strings.NewReader("jpeg bytes"),
	}
}

func TestCreateWithImage(t *testing.T) {
	svc, _, store := newTestService()

	view, err := svc.Create(context.Background(), CreateParams{
		Title: "Barangay Fiesta",
		Body:  "Join us on March 21 at the covered court.",
		Image: imageUpload(),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if view.Category != "general" {
		t.Fatalf("default category = %q, want general", view.Category)
	}
	if view.ImageKey == nil {
		t.Fatal("expected an image key to be stored")
	}
	if view.ImageURL == nil || !strings.Contains(*view.ImageURL, *view.ImageKey) {
		t.Fatalf("image url %v does not reference key %s", view.ImageURL, *view.ImageKey)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("store holds %d objects, want 1", len(store.uploads))
	}
}

func TestCreateRejectsBadContentType(t *testing.T) {
	svc, repo, _ := newTestService()

	img := imageUpload()
	img.ContentType = "application/x-msdownload"
	_, err := svc.Create(context.Background(), CreateParams{
		Title: "Fiesta",
		Body:  "details",
		Image: img,
	})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("bad content type: got %v, want validation error", err)
	}
	if len(repo.items) != 0 {
		t.Fatal("announcement must not be stored when the image is rejected")
	}
}

func TestUpdateReplacesImage(t *testing.T) {
	svc, _, store := newTestService()

	view, err := svc.Create(context.Background(), CreateParams{
		Title: "Fiesta",
		Body:  "details",
		Image: imageUpload(),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	oldKey := *view.ImageKey

	replacement := imageUpload()
	replacement.FileName = "fiesta-v2.jpg"
	updated, err := svc.Update(context.Background(), view.ID, UpdateParams{Image: replacement})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.ImageKey == nil || *updated.ImageKey == oldKey {
		t.Fatalf("image key %v not replaced", updated.ImageKey)
	}
	if len(store.deleted) != 1 || store.deleted[0] != oldKey {
		t.Fatalf("old image %s not deleted, deletions: %v", oldKey, store.deleted)
	}
}

func TestUpdateClearsImage(t *testing.T) {
	svc, _, store := newTestService()

	view, err := svc.Create(context.Background(), CreateParams{
		Title: "Fiesta",
		Body:  "details",
		Image: imageUpload(),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	oldKey := *view.ImageKey

	updated, err := svc.Update(context.Background(), view.ID, UpdateParams{ClearImage: true})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.ImageKey != nil {
		t.Fatalf("image key = %v, want cleared", updated.ImageKey)
	}
	if len(store.deleted) != 1 || store.deleted[0] != oldKey {
		t.Fatalf("cleared image %s not deleted, deletions: %v", oldKey, store.deleted)
	}
}

func TestDeleteRemovesImageObject(t *testing.T) {
	svc, _, store := newTestService()

	view, err := svc.Create(context.Background(), CreateParams{
		Title: "Fiesta",
		Body:  "details",
		Image: imageUpload(),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(context.Background(), view.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if len(store.uploads) != 0 {
		t.Fatalf("store still holds %d objects after delete", len(store.uploads))
	}
}
