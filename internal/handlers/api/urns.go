package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"sealshare/internal/metrics"
	"sealshare/internal/models"
	"sealshare/internal/ratelimit"
	"sealshare/internal/service"
)

// UrnHandler mints pseudo-identities via JSON API.
type UrnHandler struct {
	svc *service.Service
	log *slog.Logger
}

// NewUrnHandler creates a new API urn handler.
func NewUrnHandler(svc *service.Service, log *slog.Logger) *UrnHandler {
	return &UrnHandler{svc: svc, log: log}
}

// Generate mints a new URN, rate limited per client IP. The body is optional;
// it may carry a contact email to associate with the identity.
func (h *UrnHandler) Generate(c fiber.Ctx) error {
	var body models.GenerateUrnRequest
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	resp, err := h.svc.GenerateUrn(c.Context(), c.IP(), body.Email)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			metrics.RecordRateLimited(ratelimit.OpGenerateUrn)
		}
		return serviceError(c, h.log, err)
	}

	// Returning clients present the urn via this cookie; API clients may use
	// the X-Urn header instead.
	c.Cookie(&fiber.Cookie{
		Name:     "urn",
		Value:    resp.Urn,
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HTTPOnly: true,
		SameSite: "Strict",
	})

	return jsonSuccess(c, resp)
}
