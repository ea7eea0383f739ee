package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"barangay_portal_backend/internal/announcements/repository"
	"barangay_portal_backend/internal/announcements/service"
	"barangay_portal_backend/internal/announcements/transport"
	"barangay_portal_backend/platform/httpkit"
	"barangay_portal_backend/platform/sanitize"
	"barangay_portal_backend/platform/validator"
)

// Handler handles HTTP requests for announcements.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid announcement ID"
)

// New creates a new announcements handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// List pages the public board.
// GET /api/v1/announcements
func (h *Handler) List(c *gin.Context) {
	var req transport.ListAnnouncementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 20
	}

	views, total, err := h.svc.List(c.Request.Context(), repository.ListFilters{
		Category: req.Category,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]transport.AnnouncementResponse, 0, len(views))
	for i := range views {
		responses = append(responses, transport.ToAnnouncementResponse(&views[i]))
	}

	httpkit.OK(c, transport.ListAnnouncementsResponse{Announcements: responses, Total: total, Page: page})
}

// Get returns one announcement.
// GET /api/v1/announcements/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	view, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAnnouncementResponse(view))
}

// Create posts a new announcement. Accepts multipart form data with an
// optional "image" file part.
// POST /api/v1/admin/announcements
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateAnnouncementRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read image upload", nil)
		return
	}
	defer closeImage()

	view, err := h.svc.Create(c.Request.Context(), service.CreateParams{
		Title:    sanitize.Text(req.Title),
		Body:     sanitize.Text(req.Body),
		Category: sanitize.Text(req.Category),
		Image:    image,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToAnnouncementResponse(view))
}

// Update applies partial changes, optionally replacing or clearing the image.
// PATCH /api/v1/admin/announcements/:id
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateAnnouncementRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	image, closeImage, err := formImage(c)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read image upload", nil)
		return
	}
	defer closeImage()

	params := service.UpdateParams{
		Image:      image,
		ClearImage: req.ClearImage,
	}
	if req.Title != nil {
		cleaned := sanitize.Text(*req.Title)
		params.Title = &cleaned
	}
	if req.Body != nil {
		cleaned := sanitize.Text(*req.Body)
		params.Body = &cleaned
	}
	if req.Category != nil {
		cleaned := sanitize.Text(*req.Category)
		params.Category = &cleaned
	}

	view, err := h.svc.Update(c.Request.Context(), id, params)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToAnnouncementResponse(view))
}

// Delete removes an announcement.
// DELETE /api/v1/admin/announcements/:id
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}

	httpkit.OK(c, gin.H{"deleted": true})
}

// formImage extracts the optional "image" file part. The returned close
// function is a no-op when no image was uploaded.
func formImage(c *gin.Context) (*service.ImageUpload, func(), error) {
	header, err := c.FormFile("image")
	if err != nil {
		// A missing part or a non-multipart body both mean "no image".
		if errors.Is(err, http.ErrMissingFile) || !errors.Is(err, multipart.ErrMessageTooLarge) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}

	return &service.ImageUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, func() { _ = file.Close() }, nil
}
