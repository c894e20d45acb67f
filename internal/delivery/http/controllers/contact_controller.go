package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "clubsite/internal/delivery/http/helpers"
	"clubsite/internal/domain"
)

// ContactRequest is the request body for POST /contact.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate implements Validator. Length and format rules are enforced by the service.
func (c ContactRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, "email is required")
	}
	if strings.TrimSpace(c.Message) == "" {
		errs = append(errs, "message is required")
	}
	return errs
}

// ContactResponse is the data payload for POST /contact (202).
type ContactResponse struct {
	Status string `json:"status"`
}

// ContactSuccessResponse is the success response envelope for POST /contact (202).
type ContactSuccessResponse struct {
	Data  ContactResponse `json:"data"`
	Error *h.APIError     `json:"error"`
}

type ContactController struct {
	Logger  *slog.Logger
	Service domain.ContactService
}

func NewContactController(logger *slog.Logger, svc domain.ContactService) *ContactController {
	return &ContactController{
		Logger:  logger,
		Service: svc,
	}
}

// SubmitContact godoc
// @Summary Send a contact message
// @Description Forwards a message from the public contact form to the club by email. Rate limited per client IP.
// @Tags contact
// @Accept json
// @Produce json
// @Param body body ContactRequest true "Contact message"
// @Success 202 {object} controllers.ContactSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /contact [post]
func (c *ContactController) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	err := c.Service.Submit(r.Context(), &domain.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusAccepted, ContactResponse{Status: "sent"})
}
