// Package certificates provides the certificate request bounded context:
// public submission and tracking plus the staff approval workflow.
package certificates

import (
	"context"

	"barangay_portal_backend/internal/adapters/storage"
	"barangay_portal_backend/internal/certificates/handler"
	"barangay_portal_backend/internal/certificates/repository"
	"barangay_portal_backend/internal/certificates/service"
	"barangay_portal_backend/internal/events"
	apphttp "barangay_portal_backend/internal/http"
	identityservice "barangay_portal_backend/internal/identity/service"
	"barangay_portal_backend/internal/notification"
	"barangay_portal_backend/internal/pdf"
	"barangay_portal_backend/internal/tracking"
	"barangay_portal_backend/platform/config"
	"barangay_portal_backend/platform/logger"
	"barangay_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the certificates bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

var _ apphttp.Module = (*Module)(nil)

type artifactSigner struct {
	store  storage.StorageService
	bucket string
}

func (s artifactSigner) SignedURL(ctx context.Context, fileKey string) (string, error) {
	presigned, err := s.store.GenerateDownloadURL(ctx, s.bucket, fileKey)
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

// NewModule creates and initializes the certificates module.
func NewModule(
	pool *pgxpool.Pool,
	identity *identityservice.Service,
	dispatcher notification.Dispatcher,
	store storage.StorageService,
	minioCfg config.MinIOConfig,
	officeCfg config.OfficeConfig,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	bucket := minioCfg.GetMinioBucketCertificates()
	svc := service.New(
		repo,
		identity,
		tracking.NewGenerator(),
		pdf.NewRenderer(),
		store,
		bucket,
		officeCfg,
		dispatcher,
		bus,
		log,
	)

	return &Module{
		handler: handler.New(svc, val, artifactSigner{store: store, bucket: bucket}),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "certificates"
}

// Service exposes the lifecycle service.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the storage layer for the dashboard module.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts public and staff certificate routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/certificates")
	public.POST("", ctx.SubmissionRateLimiter.RateLimit(), m.handler.Submit)
	public.GET("/track/:trackingId", m.handler.Track)

	mine := ctx.Protected.Group("/my/certificates")
	mine.POST("", ctx.SubmissionRateLimiter.RateLimit(), m.handler.SubmitOwn)
	mine.GET("", m.handler.ListMine)

	staff := ctx.Staff.Group("/certificates")
	staff.GET("", m.handler.List)
	staff.GET("/:id", m.handler.Get)
	staff.POST("/:id/approve", m.handler.Approve)
	staff.POST("/:id/reject", m.handler.Reject)
	staff.PATCH("/:id/status", m.handler.SetStatus)
	staff.GET("/:id/download", m.handler.Download)
}
