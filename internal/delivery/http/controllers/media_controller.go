package controllers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"

	h "clubsite/internal/delivery/http/helpers"
	"clubsite/internal/delivery/http/middleware"
	"clubsite/internal/domain"
	"clubsite/internal/lifecycle"
)

const (
	// multipartOverhead is the allowance for multipart framing on top of the file itself.
	multipartOverhead = 1 << 20
	multipartMemory   = 8 << 20
)

// MediaSuccessResponse is the success response envelope for POST /media (201).
type MediaSuccessResponse struct {
	Data  *domain.Media `json:"data"`
	Error *h.APIError   `json:"error"`
}

// MediaListSuccessResponse is the success response envelope for GET /media (200).
type MediaListSuccessResponse struct {
	Data  h.ListResponse[*domain.Media] `json:"data"`
	Error *h.APIError                   `json:"error"`
}

type MediaController struct {
	Logger  *slog.Logger
	Service domain.MediaService
}

func NewMediaController(logger *slog.Logger, svc domain.MediaService) *MediaController {
	return &MediaController{
		Logger:  logger,
		Service: svc,
	}
}

// UploadMedia godoc
// @Summary Upload an image
// @Description Stores an image in the media library. Allowed types: jpeg, png, gif, webp, avif, svg. Maximum size 10 MiB.
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 201 {object} controllers.MediaSuccessResponse "data contains the stored media"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 413 {object} helpers.APIResponse "error.code: payload_too_large"
// @Failure 415 {object} helpers.APIResponse "error.code: unsupported_media_type"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /media [post]
func (c *MediaController) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, lifecycle.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.WriteJSONError(w, http.StatusRequestEntityTooLarge, h.ErrCodePayloadTooLarge, "file exceeds the 10 MiB limit")
			return
		}
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "expected a multipart/form-data body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType, err := uploadContentType(file, header)
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "could not read file")
		return
	}

	media, err := c.Service.Upload(r.Context(), middleware.SessionFromContext(r.Context()), domain.MediaUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, media)
}

// uploadContentType returns the part's declared type, sniffing the content
// when the client sent none or a generic one. The file is rewound afterwards.
func uploadContentType(file multipart.File, header *multipart.FileHeader) (string, error) {
	declared := lifecycle.NormalizeContentType(header.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}
	detected, err := mimetype.DetectReader(file)
	if err != nil {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return detected.String(), nil
}

// ListMedia godoc
// @Summary List media
// @Description Returns a page of the media library, newest first.
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.MediaListSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /media [get]
func (c *MediaController) ListMedia(w http.ResponseWriter, r *http.Request) {
	p := h.ParsePagination(r)
	items, total, err := c.Service.List(r.Context(), middleware.SessionFromContext(r.Context()), p)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.NewListResponse(items, p, total))
}

// DeleteMedia godoc
// @Summary Delete media
// @Description Removes the media row, then the stored object.
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param id path string true "Media ID (UUID)"
// @Success 200 {object} controllers.DeleteSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /media/{id} [delete]
func (c *MediaController) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), middleware.SessionFromContext(r.Context()), id); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, DeleteResponse{Status: "deleted"})
}
