// Package service implements the certificate request lifecycle: submission,
// approval with document rendering, rejection, and public tracking.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"barangay_portal_backend/internal/certificates/repository"
	"barangay_portal_backend/internal/events"
	identityrepo "barangay_portal_backend/internal/identity/repository"
	identityservice "barangay_portal_backend/internal/identity/service"
	"barangay_portal_backend/internal/notification"
	"barangay_portal_backend/internal/pdf"
	"barangay_portal_backend/internal/tracking"
	"barangay_portal_backend/platform/apperr"
	"barangay_portal_backend/platform/config"
	"barangay_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultApproveRemarks = "Certificate approved"
	defaultRejectRemarks  = "Certificate request rejected"
)

// ArtifactStore persists rendered certificate documents and the ID scans
// submitted alongside a request.
type ArtifactStore interface {
	UploadObject(ctx context.Context, bucket, fileKey, contentType string, reader io.Reader, size int64) error
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	ValidateContentType(contentType string) error
	ValidateFileSize(sizeBytes int64) error
}

// idFileFolder prefixes stored identity-document objects inside the
// certificates bucket.
const idFileFolder = "ids"

type Service struct {
	repo       repository.Repository
	identity   *identityservice.Service
	tracker    *tracking.Generator
	renderer   pdf.Renderer
	store      ArtifactStore
	bucket     string
	office     config.OfficeConfig
	dispatcher notification.Dispatcher
	bus        events.Bus
	log        *logger.Logger
}

func New(
	repo repository.Repository,
	identity *identityservice.Service,
	tracker *tracking.Generator,
	renderer pdf.Renderer,
	store ArtifactStore,
	bucket string,
	office config.OfficeConfig,
	dispatcher notification.Dispatcher,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:       repo,
		identity:   identity,
		tracker:    tracker,
		renderer:   renderer,
		store:      store,
		bucket:     bucket,
		office:     office,
		dispatcher: dispatcher,
		bus:        bus,
		log:        log,
	}
}

// SubmitParams carries a certificate request submission.
type SubmitParams struct {
	FullName        string
	Email           string
	Phone           string
	CertificateType string
	Purpose         string
	RequestedBy     time.Time
	IDType          *string
	IDNumber        *string
	IDFile          *IDUpload
	Channel         string
}

// IDUpload is an incoming identity-document scan.
type IDUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Result pairs a lifecycle outcome with the dispatch outcome. The status
// transition and the notification are reported separately: a failed
// notification never fails the transition.
type Result struct {
	Request            *repository.CertificateRequest
	NotificationQueued bool
}

// Submit records a new request in pending and notifies the submitter. The
// public flow creates or reuses the owning user by email.
func (s *Service) Submit(ctx context.Context, params SubmitParams) (*Result, error) {
	if err := validateSubmit(params); err != nil {
		return nil, err
	}

	user, err := s.identity.EnsureUser(ctx, params.FullName, params.Email, params.Phone)
	if err != nil {
		return nil, err
	}

	return s.submitAs(ctx, user, params)
}

// SubmitForUser records a new request owned by an already-authenticated
// user. The owner comes from the access token, never from the request body.
func (s *Service) SubmitForUser(ctx context.Context, userID uuid.UUID, params SubmitParams) (*Result, error) {
	if err := validateSubmit(params); err != nil {
		return nil, err
	}

	user, err := s.identity.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.submitAs(ctx, user, params)
}

// ListForUser pages a resident's own requests, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]repository.CertificateRequest, int, error) {
	return s.repo.List(ctx, repository.ListFilters{UserID: userID, Limit: limit, Offset: offset})
}

func validateSubmit(params SubmitParams) error {
	if !pdf.IsSupportedType(params.CertificateType) {
		return apperr.Validation(fmt.Sprintf("unknown certificate type %q", params.CertificateType))
	}
	if params.Purpose == "" {
		return apperr.Validation("purpose is required")
	}
	return nil
}

func (s *Service) submitAs(ctx context.Context, user *identityrepo.User, params SubmitParams) (*Result, error) {
	var idFileKey *string
	if params.IDFile != nil {
		key, err := s.uploadIDFile(ctx, params.IDFile)
		if err != nil {
			return nil, err
		}
		idFileKey = &key
	}

	req, err := s.createWithFreshTrackingID(ctx, user.ID, params, idFileKey)
	if err != nil {
		return nil, err
	}
	req.RequesterName = user.FullName()
	req.RequesterEmail = user.Email

	s.bus.Publish(ctx, events.CertificateSubmitted{
		BaseEvent:       events.NewBaseEvent(),
		RequestID:       req.ID,
		TrackingID:      req.TrackingID,
		UserID:          user.ID,
		CertificateType: req.CertificateType,
		Channel:         req.Channel,
	})

	queued := s.dispatch(ctx, notification.Notification{
		Kind:           notification.KindCertificateReceived,
		RecipientEmail: user.Email,
		RecipientName:  user.FullName(),
		Payload: notification.Payload{
			TrackingID:      req.TrackingID,
			CertificateType: req.CertificateType,
		},
	})

	return &Result{Request: req, NotificationQueued: queued}, nil
}

// Approve renders the certificate, stores the artifact, and only then commits
// the terminal status. A render or upload failure leaves the request pending.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, remarks, address string) (*Result, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if remarks == "" {
		remarks = defaultApproveRemarks
	}

	doc, err := s.renderer.Render(req.CertificateType, pdf.CertificateData{
		RecipientName: req.RequesterName,
		Address:       address,
		Purpose:       req.Purpose,
		TrackingID:    req.TrackingID,
		IssuedAt:      time.Now(),
		OfficeName:    s.office.GetOfficeName(),
		OfficeAddress: s.office.GetOfficeAddress(),
	})
	if err != nil {
		return nil, err
	}

	artifactKey := pdf.ArtifactKey(req.CertificateType, req.TrackingID)
	if err := s.store.UploadObject(ctx, s.bucket, artifactKey, "application/pdf", bytes.NewReader(doc), int64(len(doc))); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to store certificate artifact", err)
	}

	now := time.Now()
	if err := s.repo.UpdateStatus(ctx, req.ID, repository.StatusApproved, &remarks, &now, &artifactKey); err != nil {
		return nil, err
	}
	oldStatus := req.Status
	req.Status = repository.StatusApproved
	req.Remarks = &remarks
	req.ProcessedAt = &now
	req.ArtifactKey = &artifactKey

	s.publishStatusChange(ctx, req, oldStatus)

	queued := s.dispatch(ctx, notification.Notification{
		Kind:           notification.KindCertificateApproved,
		RecipientEmail: req.RequesterEmail,
		RecipientName:  req.RequesterName,
		AttachmentKey:  &artifactKey,
		Payload: notification.Payload{
			TrackingID:      req.TrackingID,
			CertificateType: req.CertificateType,
			Remarks:         remarks,
		},
	})

	return &Result{Request: req, NotificationQueued: queued}, nil
}

// Reject moves the request to rejected and notifies the submitter.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, reason string) (*Result, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = defaultRejectRemarks
	}

	now := time.Now()
	if err := s.repo.UpdateStatus(ctx, req.ID, repository.StatusRejected, &reason, &now, nil); err != nil {
		return nil, err
	}
	oldStatus := req.Status
	req.Status = repository.StatusRejected
	req.Remarks = &reason
	req.ProcessedAt = &now

	s.publishStatusChange(ctx, req, oldStatus)

	queued := s.dispatch(ctx, notification.Notification{
		Kind:           notification.KindCertificateRejected,
		RecipientEmail: req.RequesterEmail,
		RecipientName:  req.RequesterName,
		Payload: notification.Payload{
			TrackingID:      req.TrackingID,
			CertificateType: req.CertificateType,
			Reason:          reason,
		},
	})

	return &Result{Request: req, NotificationQueued: queued}, nil
}

// SetStatus is the administrative escape hatch: it writes any status without
// side effects. The processed timestamp tracks terminality, so corrections
// back to pending clear it.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string, remarks *string) (*repository.CertificateRequest, error) {
	switch status {
	case repository.StatusPending, repository.StatusApproved, repository.StatusRejected:
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown status %q", status))
	}

	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var processedAt *time.Time
	if repository.IsTerminalStatus(status) {
		now := time.Now()
		processedAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, req.ID, status, remarks, processedAt, nil); err != nil {
		return nil, err
	}
	oldStatus := req.Status
	req.Status = status
	req.Remarks = remarks
	req.ProcessedAt = processedAt

	s.publishStatusChange(ctx, req, oldStatus)
	return req, nil
}

// Track resolves a tracking id for the public status page.
func (s *Service) Track(ctx context.Context, trackingID string) (*repository.CertificateRequest, error) {
	return s.repo.FindByTrackingID(ctx, trackingID)
}

// Get loads a request by id for staff views.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.CertificateRequest, error) {
	return s.repo.FindByID(ctx, id)
}

// List pages the staff queue.
func (s *Service) List(ctx context.Context, filters repository.ListFilters) ([]repository.CertificateRequest, int, error) {
	return s.repo.List(ctx, filters)
}

// createWithFreshTrackingID retries generation when the random suffix
// collides with an existing row. The storage unique constraint is the
// authority; the generator alone gives no uniqueness guarantee.
func (s *Service) createWithFreshTrackingID(ctx context.Context, userID uuid.UUID, params SubmitParams, idFileKey *string) (*repository.CertificateRequest, error) {
	for attempt := 0; attempt < tracking.MaxGenerateAttempts; attempt++ {
		trackingID, err := s.tracker.Generate(tracking.PrefixCertificate)
		if err != nil {
			return nil, err
		}

		req, err := s.repo.Create(ctx, repository.CreateParams{
			TrackingID:      trackingID,
			UserID:          userID,
			CertificateType: params.CertificateType,
			Purpose:         params.Purpose,
			RequestedBy:     params.RequestedBy,
			IDType:          params.IDType,
			IDNumber:        params.IDNumber,
			IDFileKey:       idFileKey,
			Channel:         params.Channel,
		})
		if err == repository.ErrDuplicateTrackingID {
			continue
		}
		if err != nil {
			return nil, err
		}
		return req, nil
	}
	return nil, apperr.Internal("could not allocate a unique tracking id")
}

func (s *Service) uploadIDFile(ctx context.Context, f *IDUpload) (string, error) {
	if err := s.store.ValidateContentType(f.ContentType); err != nil {
		return "", apperr.Validation(err.Error())
	}
	if err := s.store.ValidateFileSize(f.Size); err != nil {
		return "", apperr.Validation(err.Error())
	}
	return s.store.UploadFile(ctx, s.bucket, idFileFolder, f.FileName, f.ContentType, f.Reader, f.Size)
}

func (s *Service) dispatch(ctx context.Context, n notification.Notification) bool {
	// Dispatch happens strictly after the state change is committed and its
	// failure is swallowed here; the caller only learns the outcome flag.
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		return false
	}
	return true
}

func (s *Service) publishStatusChange(ctx context.Context, req *repository.CertificateRequest, oldStatus string) {
	s.bus.Publish(ctx, events.CertificateStatusChanged{
		BaseEvent:       events.NewBaseEvent(),
		RequestID:       req.ID,
		TrackingID:      req.TrackingID,
		CertificateType: req.CertificateType,
		OldStatus:       oldStatus,
		NewStatus:       req.Status,
	})
}
