package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"barangay_portal_backend/internal/certificates/repository"
	"barangay_portal_backend/internal/events"
	identityrepo "barangay_portal_backend/internal/identity/repository"
	identityservice "barangay_portal_backend/internal/identity/service"
	"barangay_portal_backend/internal/notification"
	"barangay_portal_backend/internal/pdf"
	"barangay_portal_backend/internal/tracking"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// fakes

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*identityrepo.User
	creates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*identityrepo.User{}}
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*identityrepo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identityrepo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) CreateOrGet(_ context.Context, params identityrepo.CreateUserParams) (*identityrepo.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := strings.ToLower(params.Email)
	if existing, ok := f.users[email]; ok {
		clone := *existing
		return &clone, nil
	}
	u := &identityrepo.User{
		ID:        uuid.New(),
		Email:     email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		Phone:     params.Phone,
		Role:      params.Role,
		CreatedAt: time.Now(),
	}
	f.users[email] = u
	f.creates++
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepo) SetPassword(context.Context, uuid.UUID, string) error { return nil }

func (f *fakeUserRepo) CountByRole(_ context.Context, role string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, u := range f.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

type fakeCertRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*repository.CertificateRequest
}

func newFakeCertRepo() *fakeCertRepo {
	return &fakeCertRepo{requests: map[uuid.UUID]*repository.CertificateRequest{}}
}

func (f *fakeCertRepo) Create(_ context.Context, params repository.CreateParams) (*repository.CertificateRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.TrackingID == params.TrackingID {
			return nil, repository.ErrDuplicateTrackingID
		}
	}
	req := &repository.CertificateRequest{
		ID:              uuid.New(),
		TrackingID:      params.TrackingID,
		UserID:          params.UserID,
		CertificateType: params.CertificateType,
		Purpose:         params.Purpose,
		RequestedBy:     params.RequestedBy,
		Status:          repository.StatusPending,
		IDType:          params.IDType,
		IDNumber:        params.IDNumber,
		IDFileKey:       params.IDFileKey,
		Channel:         params.Channel,
		CreatedAt:       time.Now(),
	}
	f.requests[req.ID] = req
	clone := *req
	return &clone, nil
}

func (f *fakeCertRepo) FindByID(_ context.Context, id uuid.UUID) (*repository.CertificateRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return nil, apperr.NotFound("certificate request not found")
	}
	clone := *req
	return &clone, nil
}

func (f *fakeCertRepo) FindByTrackingID(_ context.Context, trackingID string) (*repository.CertificateRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.requests {
		if req.TrackingID == trackingID {
			clone := *req
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("certificate request not found")
}

func (f *fakeCertRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, remarks *string, processedAt *time.Time, artifactKey *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return apperr.NotFound("certificate request not found")
	}
	req.Status = status
	req.Remarks = remarks
	req.ProcessedAt = processedAt
	if artifactKey != nil {
		req.ArtifactKey = artifactKey
	}
	return nil
}

func (f *fakeCertRepo) List(_ context.Context, filters repository.ListFilters) ([]repository.CertificateRequest, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]repository.CertificateRequest, 0, len(f.requests))
	for _, req := range f.requests {
		if filters.UserID != uuid.Nil && req.UserID != filters.UserID {
			continue
		}
		items = append(items, *req)
	}
	return items, len(items), nil
}

func (f *fakeCertRepo) CountByStatus(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

type fakeRenderer struct {
	fail bool
}

func (f *fakeRenderer) Render(certificateType string, _ pdf.CertificateData) ([]byte, error) {
	if f.fail {
		return nil, fmt.Errorf("renderer crashed")
	}
	if !pdf.IsSupportedType(certificateType) {
		return nil, apperr.Validation("unsupported certificate type")
	}
	return []byte("%PDF-1.7 test"), nil
}

type fakeArtifactStore struct {
	mu      sync.Mutex
	uploads map[string][]byte
	fail    bool
}

func newFakeArtifactStore() *fakeArtifactStore {
	return &fakeArtifactStore{uploads: map[string][]byte{}}
}

func (f *fakeArtifactStore) UploadObject(_ context.Context, _, fileKey, _ string, reader io.Reader, _ int64) error {
	if f.fail {
		return fmt.Errorf("storage unavailable")
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[fileKey] = content
	return nil
}

func (f *fakeArtifactStore) UploadFile(_ context.Context, _, folder, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	if f.fail {
		return "", fmt.Errorf("storage unavailable")
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := folder + "/" + uuid.New().String() + "-" + fileName
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[key] = content
	return key, nil
}

func (f *fakeArtifactStore) ValidateContentType(contentType string) error {
	switch contentType {
	case "image/jpeg", "image/png", "application/pdf":
		return nil
	}
	return fmt.Errorf("content type %s is not allowed", contentType)
}

func (f *fakeArtifactStore) ValidateFileSize(sizeBytes int64) error {
	if sizeBytes <= 0 || sizeBytes > 1<<20 {
		return fmt.Errorf("file size %d out of range", sizeBytes)
	}
	return nil
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []notification.Notification
	fail bool
}

func (f *fakeDispatcher) Dispatch(_ context.Context, n notification.Notification) error {
	if f.fail {
		return fmt.Errorf("dispatch failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return nil
}

type testOfficeConfig struct{}

func (testOfficeConfig) GetOfficeName() string    { return "Barangay San Isidro" }
func (testOfficeConfig) GetOfficeAddress() string { return "San Isidro, Quezon City" }

type testEnv struct {
	svc        *Service
	certRepo   *fakeCertRepo
	userRepo   *fakeUserRepo
	renderer   *fakeRenderer
	store      *fakeArtifactStore
	dispatcher *fakeDispatcher
}

func newTestEnv() *testEnv {
	log := logger.New("development")
	userRepo := newFakeUserRepo()
	certRepo := newFakeCertRepo()
	renderer := &fakeRenderer{}
	store := newFakeArtifactStore()
	dispatcher := &fakeDispatcher{}

	svc := New(
		certRepo,
		identityservice.New(userRepo, log),
		tracking.NewGenerator(),
		renderer,
		store,
		"certificates",
		testOfficeConfig{},
		dispatcher,
		events.NewInMemoryBus(log),
		log,
	)

	return &testEnv{
		svc:        svc,
		certRepo:   certRepo,
		userRepo:   userRepo,
		renderer:   renderer,
		store:      store,
		dispatcher: dispatcher,
	}
}

func submitParams() SubmitParams {
	return SubmitParams{
		FullName:        "Juan Dela Cruz",
		Email:           "juan@example.com",
		CertificateType: pdf.TypeBarangayClearance,
		Purpose:         "local employment",
		RequestedBy:     time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Channel:         "online",
	}
}

// ---------------------------------------------------------------------------
// tests

func TestSubmitCreatesPendingRequest(t *testing.T) {
	env := newTestEnv()

	result, err := env.svc.Submit(context.Background(), submitParams())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	req := result.Request
	if req.Status != repository.StatusPending {
		t.Fatalf("new request status = %q, want pending", req.Status)
	}
	if req.ProcessedAt != nil {
		t.Fatal("pending request must not have a processed timestamp")
	}
	if !strings.HasPrefix(req.TrackingID, "CERT-") {
		t.Fatalf("tracking id %q does not use the CERT prefix", req.TrackingID)
	}
	if !result.NotificationQueued {
		t.Fatal("expected the received notification to be queued")
	}
	if len(env.dispatcher.sent) != 1 || env.dispatcher.sent[0].Kind != notification.KindCertificateReceived {
		t.Fatalf("expected one received notification, got %+v", env.dispatcher.sent)
	}
}

func TestSubmitReusesExistingUser(t *testing.T) {
	env := newTestEnv()

	if _, err := env.svc.Submit(context.Background(), submitParams()); err != nil {
		t.Fatalf("first Submit returned error: %v", err)
	}

	second := submitParams()
	second.FullName = "J. Dela Cruz"
	second.Email = "JUAN@example.com"
	result, err := env.svc.Submit(context.Background(), second)
	if err != nil {
		t.Fatalf("second Submit returned error: %v", err)
	}

	if env.userRepo.creates != 1 {
		t.Fatalf("expected a single user row, got %d creates", env.userRepo.creates)
	}
	if len(env.userRepo.users) != 1 {
		t.Fatalf("expected one stored user, got %d", len(env.userRepo.users))
	}
	first, _ := env.certRepo.FindByTrackingID(context.Background(), result.Request.TrackingID)
	if first.UserID != result.Request.UserID {
		t.Fatal("second submission must reference the same user")
	}
}

func TestSubmitRejectsUnknownType(t *testing.T) {
	env := newTestEnv()

	params := submitParams()
	params.CertificateType = "Cedula"
	_, err := env.svc.Submit(context.Background(), params)
	if err == nil {
		t.Fatal("expected error for unknown certificate type")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", apperr.GetKind(err))
	}
}

func TestSubmitForUserResolvesOwnerFromStore(t *testing.T) {
	env := newTestEnv()

	user, err := env.userRepo.CreateOrGet(context.Background(), identityrepo.CreateUserParams{
		Email:     "maria@example.com",
		FirstName: "Maria",
		LastName:  "Santos",
		Role:      "resident",
	})
	if err != nil {
		t.Fatalf("seed user returned error: %v", err)
	}

	params := submitParams()
	params.FullName = ""
	params.Email = ""
	result, err := env.svc.SubmitForUser(context.Background(), user.ID, params)
	if err != nil {
		t.Fatalf("SubmitForUser returned error: %v", err)
	}

	if result.Request.UserID != user.ID {
		t.Fatal("request must belong to the authenticated user")
	}
	if result.Request.RequesterEmail != "maria@example.com" {
		t.Fatalf("requester email = %q, want the stored address", result.Request.RequesterEmail)
	}
	if env.userRepo.creates != 1 {
		t.Fatalf("expected no extra user rows, got %d creates", env.userRepo.creates)
	}
	if len(env.dispatcher.sent) != 1 || env.dispatcher.sent[0].RecipientEmail != "maria@example.com" {
		t.Fatalf("expected the notification addressed to the stored user, got %+v", env.dispatcher.sent)
	}
}

func TestSubmitForUserUnknownUser(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.SubmitForUser(context.Background(), uuid.New(), submitParams())
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found kind, got %v", apperr.GetKind(err))
	}
}

func TestListForUserScopesToOwner(t *testing.T) {
	env := newTestEnv()

	mine, err := env.svc.Submit(context.Background(), submitParams())
	if err != nil {
		t.Fatalf("first Submit returned error: %v", err)
	}
	other := submitParams()
	other.Email = "pedro@example.com"
	other.FullName = "Pedro Reyes"
	if _, err := env.svc.Submit(context.Background(), other); err != nil {
		t.Fatalf("second Submit returned error: %v", err)
	}

	items, total, err := env.svc.ListForUser(context.Background(), mine.Request.UserID, 20, 0)
	if err != nil {
		t.Fatalf("ListForUser returned error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("expected exactly the owner's request, got %d items (total %d)", len(items), total)
	}
	if items[0].UserID != mine.Request.UserID {
		t.Fatal("listing leaked another resident's request")
	}
}

func TestSubmitStoresIDFile(t *testing.T) {
	env := newTestEnv()

	params := submitParams()
	params.IDFile = &IDUpload{
		FileName:    "id-scan.png",
		ContentType: "image/png",
		Size:        4,
		Reader:      strings.NewReader("scan"),
	}
	result, err := env.svc.Submit(context.Background(), params)
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if result.Request.IDFileKey == nil {
		t.Fatal("expected the stored request to reference the uploaded ID file")
	}
	key := *result.Request.IDFileKey
	if !strings.HasPrefix(key, "ids/") {
		t.Fatalf("ID file key %q not under the ids folder", key)
	}
	if string(env.store.uploads[key]) != "scan" {
		t.Fatalf("stored object mismatch for key %q", key)
	}
}

func TestSubmitRejectsBadIDFileType(t *testing.T) {
	env := newTestEnv()

	params := submitParams()
	params.IDFile = &IDUpload{
		FileName:    "id.txt",
		ContentType: "text/plain",
		Size:        4,
		Reader:      strings.NewReader("scan"),
	}
	_, err := env.svc.Submit(context.Background(), params)
	if err == nil {
		t.Fatal("expected error for disallowed ID file type")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", apperr.GetKind(err))
	}
	if len(env.certRepo.requests) != 0 {
		t.Fatal("a rejected upload must not persist a request")
	}
}

func TestSubmitRegeneratesTrackingIDOnCollision(t *testing.T) {
	env := newTestEnv()
	// Two generators seeded identically mint the same first id; pre-occupy it.
	colliding := tracking.NewGeneratorAt(func() time.Time { return time.Now() }, 42)
	takenID, err := colliding.Generate(tracking.PrefixCertificate)
	if err != nil {
		t.Fatalf("generate colliding id: %v", err)
	}
	seedUser, _ := env.userRepo.CreateOrGet(context.Background(), identityrepo.CreateUserParams{Email: "seed@example.com"})
	if _, err := env.certRepo.Create(context.Background(), repository.CreateParams{
		TrackingID:      takenID,
		UserID:          seedUser.ID,
		CertificateType: pdf.TypeBarangayClearance,
		Purpose:         "seed",
	}); err != nil {
		t.Fatalf("seed request: %v", err)
	}

	env.svc.tracker = tracking.NewGeneratorAt(func() time.Time { return time.Now() }, 42)
	result, err := env.svc.Submit(context.Background(), submitParams())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if result.Request.TrackingID == takenID {
		t.Fatal("submission must not reuse an occupied tracking id")
	}
}

func TestApproveRendersAndStoresArtifact(t *testing.T) {
	env := newTestEnv()

	submitted, err := env.svc.Submit(context.Background(), submitParams())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	result, err := env.svc.Approve(context.Background(), submitted.Request.ID, "", "123 Sampaguita St.")
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}

	req := result.Request
	if req.Status != repository.StatusApproved {
		t.Fatalf("status = %q, want approved", req.Status)
	}
	if req.ProcessedAt == nil {
		t.Fatal("approved request must carry a processed timestamp")
	}
	if req.Remarks == nil || *req.Remarks != "Certificate approved" {
		t.Fatalf("remarks = %v, want default approval remarks", req.Remarks)
	}

	wantKey := "certificates/Barangay_Clearance_" + req.TrackingID + ".pdf"
	if req.ArtifactKey == nil || *req.ArtifactKey != wantKey {
		t.Fatalf("artifact key = %v, want %q", req.ArtifactKey, wantKey)
	}
	if _, ok := env.store.uploads[wantKey]; !ok {
		t.Fatal("artifact was not uploaded")
	}

	last := env.dispatcher.sent[len(env.dispatcher.sent)-1]
	if last.Kind != notification.KindCertificateApproved {
		t.Fatalf("last notification kind = %q, want approved", last.Kind)
	}
	if last.AttachmentKey == nil || *last.AttachmentKey != wantKey {
		t.Fatal("approved notification must reference the artifact")
	}
}

func TestApproveRenderFailureLeavesPending(t *testing.T) {
	env := newTestEnv()

	submitted, err := env.svc.Submit(context.Background(), submitParams())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	env.renderer.fail = true
	if _, err := env.svc.Approve(context.Background(), submitted.Request.ID, "", ""); err == nil {
		t.Fatal("expected approve to fail when rendering fails")
	}

	req, err := env.certRepo.FindByID(context.Background(), submitted.Request.ID)
	if err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if req.Status != repository.StatusPending {
		t.Fatalf("status after failed render = %q, want pending", req.Status)
	}
	if req.ProcessedAt != nil {
		t.Fatal("failed approval must not set the processed timestamp")
	}
}

func TestApproveUploadFailureLeavesPending(t *testing.T) {
	env := newTestEnv()

	submitted, err := env.svc.Submit(context.Background(), submitParams())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	env.store.fail = true
	if _, err := env.svc.Approve(context.Background(), submitted.Request.ID, "", ""); err == nil {
		t.Fatal("expected approve to fail when the artifact cannot be stored")
	}

	req, _ := env.certRepo.FindByID(context.Background(), submitted.Request.ID)
	if req.Status != repository.StatusPending {
		t.Fatalf("status after failed upload = %q, want pending", req.Status)
	}
}

func TestApproveDispatchFailureStillSucceeds(t *testing.T) {
	env := newTestEnv()

	submitted, err := env.svc.Submit(context.Background(), submitParams())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	env.dispatcher.fail = true
	result, err := env.svc.Approve(context.Background(), submitted.Request.ID, "", "")
	if err != nil {
		t.Fatalf("Approve must succeed despite dispatch failure, got: %v", err)
	}
	if result.NotificationQueued {
		t.Fatal("dispatch outcome flag must report the failure")
	}
	if result.Request.Status != repository.StatusApproved {
		t.Fatalf("status = %q, want approved", result.Request.Status)
	}
}

func TestRejectSetsTerminalState(t *testing.T) {
	env := newTestEnv()

	submitted, err := env.svc.Submit(context.Background(), submitParams())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	result, err := env.svc.Reject(context.Background(), submitted.Request.ID, "incomplete requirements")
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}

	req := result.Request
	if req.Status != repository.StatusRejected {
		t.Fatalf("status = %q, want rejected", req.Status)
	}
	if req.ProcessedAt == nil {
		t.Fatal("rejected request must carry a processed timestamp")
	}
	if req.Remarks == nil || *req.Remarks != "incomplete requirements" {
		t.Fatalf("remarks = %v, want the rejection reason", req.Remarks)
	}

	last := env.dispatcher.sent[len(env.dispatcher.sent)-1]
	if last.Kind != notification.KindCertificateRejected {
		t.Fatalf("last notification kind = %q, want rejected", last.Kind)
	}
}

func TestSetStatusBypassesSideEffects(t *testing.T) {
	env := newTestEnv()

	submitted, err := env.svc.Submit(context.Background(), submitParams())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	sentBefore := len(env.dispatcher.sent)

	remarks := "corrected by staff"
	updated, err := env.svc.SetStatus(context.Background(), submitted.Request.ID, repository.StatusApproved, &remarks)
	if err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if updated.ProcessedAt == nil {
		t.Fatal("terminal correction must set the processed timestamp")
	}
	if len(env.dispatcher.sent) != sentBefore {
		t.Fatal("SetStatus must not dispatch notifications")
	}

	// Correcting back to pending clears terminality.
	reverted, err := env.svc.SetStatus(context.Background(), submitted.Request.ID, repository.StatusPending, nil)
	if err != nil {
		t.Fatalf("SetStatus returned error: %v", err)
	}
	if reverted.ProcessedAt != nil {
		t.Fatal("pending request must not have a processed timestamp")
	}
}

func TestTrackUnknownID(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Track(context.Background(), "CERT-20260302-9999")
	if err == nil {
		t.Fatal("expected error for unknown tracking id")
	}
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found kind, got %v", apperr.GetKind(err))
	}
}
