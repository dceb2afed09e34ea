package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rzafh/portfolio-backend/mailer"
	"github.com/rzafh/portfolio-backend/middleware"
	"github.com/rzafh/portfolio-backend/monitoring"
	"github.com/rzafh/portfolio-backend/types"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateContactRequest checks that all fields are present and the email is
// plausibly addressable
func validateContactRequest(req *types.ContactRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || req.Subject == "" || req.Message == "" {
		return fmt.Errorf("all fields are required: name, email, subject, message")
	}
	if !emailPattern.MatchString(req.Email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// HandleContact godoc
// @Summary Relay a contact-form submission
// @Description Validates a contact-form submission and relays it by email with the sender set as reply-to
// @Tags contact
// @Accept json
// @Produce json
// @Param request body types.ContactRequest true "Contact form fields"
// @Success 200 {object} types.ContactResponse
// @Failure 400 {object} middleware.APIError
// @Failure 500 {object} middleware.APIError
// @Failure 503 {object} middleware.APIError
// @Router /api/contact [post]
func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	var req types.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RespondBadRequest(w, fmt.Errorf("invalid JSON body: %v", err), requestID)
		return
	}

	if err := validateContactRequest(&req); err != nil {
		middleware.RespondValidationError(w, err, requestID)
		return
	}

	if h.mailer == nil {
		middleware.RespondServiceUnavailable(w, fmt.Errorf("contact relay is not configured"), requestID)
		return
	}

	id, err := h.mailer.Send(r.Context(), mailer.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		monitoring.RecordContactEmail("failed")
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to relay contact email")
		middleware.RespondProviderError(w, err, requestID)
		return
	}

	monitoring.RecordContactEmail("success")
	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"message_id": id,
	}).Info("Contact email relayed")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(types.ContactResponse{
		Message: "Email sent successfully",
		ID:      id,
	})
}
