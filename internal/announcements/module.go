// Package announcements provides the public notice board: resident-facing
// reads and the staff publishing workflow with image uploads.
package announcements

import (
	"context"

	"barangay_portal_backend/internal/adapters/storage"
	"barangay_portal_backend/internal/announcements/handler"
	"barangay_portal_backend/internal/announcements/repository"
	"barangay_portal_backend/internal/announcements/service"
	apphttp "barangay_portal_backend/internal/http"
	"barangay_portal_backend/platform/config"
	"barangay_portal_backend/platform/logger"
	"barangay_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the announcements bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

var _ apphttp.Module = (*Module)(nil)

// imageStore narrows the storage service to what the board needs and maps
// presigned URLs to plain strings.
type imageStore struct {
	storage.StorageService
}

func (s imageStore) GenerateSignedURL(ctx context.Context, bucket, fileKey string) (string, error) {
	presigned, err := s.GenerateDownloadURL(ctx, bucket, fileKey)
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

// NewModule creates and initializes the announcements module.
func NewModule(
	pool *pgxpool.Pool,
	store storage.StorageService,
	minioCfg config.MinIOConfig,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, imageStore{store}, minioCfg.GetMinioBucketAnnouncementImages(), log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "announcements"
}

// RegisterRoutes mounts public and staff announcement routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/announcements")
	public.GET("", m.handler.List)
	public.GET("/:id", m.handler.Get)

	staff := ctx.Staff.Group("/announcements")
	staff.POST("", m.handler.Create)
	staff.PATCH("/:id", m.handler.Update)
	staff.DELETE("/:id", m.handler.Delete)
}
