package api

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"sealshare/internal/metrics"
	"sealshare/internal/middleware"
	"sealshare/internal/models"
	"sealshare/internal/ratelimit"
	"sealshare/internal/service"
)

// ShareHandler handles share lifecycle operations via JSON API.
type ShareHandler struct {
	svc *service.Service
	log *slog.Logger
}

// NewShareHandler creates a new API share handler.
func NewShareHandler(svc *service.Service, log *slog.Logger) *ShareHandler {
	return &ShareHandler{svc: svc, log: log}
}

func callerUrn(c fiber.Ctx) string {
	urn, _ := c.Locals(middleware.UrnLocalKey).(string)
	return urn
}

// Create encrypts and records a new share for the caller's URN.
func (h *ShareHandler) Create(c fiber.Ctx) error {
	urn := callerUrn(c)
	if urn == "" {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid URN")
	}

	var body models.CreateShareRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.svc.CreateShare(c.Context(), urn, &body)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			metrics.RecordRateLimited(ratelimit.OpCreateShare)
		}
		return serviceError(c, h.log, err)
	}

	metrics.RecordShareCreated()
	return jsonSuccess(c, resp)
}

// Get verifies the password for a share and returns the decrypted payload.
func (h *ShareHandler) Get(c fiber.Ctx) error {
	var body models.GetShareRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := h.svc.RetrieveShare(c.Context(), &body)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			metrics.RecordRateLimited(ratelimit.OpGetShare)
		} else {
			metrics.RecordRetrieval(retrievalOutcome(err))
		}
		return serviceError(c, h.log, err)
	}

	metrics.RecordRetrieval(metrics.OutcomeSuccess)
	// Retrieval needs no identity, but when the caller presents one it goes
	// into the access log.
	if urn := callerUrn(c); urn != "" {
		h.log.Info("share retrieved", "identifier", body.Identifier, "urn", urn)
	}
	return jsonSuccess(c, resp)
}

// List returns the caller's share history.
func (h *ShareHandler) List(c fiber.Ctx) error {
	urn := callerUrn(c)
	if urn == "" {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid URN")
	}

	summaries, err := h.svc.ListShares(c.Context(), urn)
	if err != nil {
		return serviceError(c, h.log, err)
	}

	return jsonSuccess(c, summaries)
}

// Delete tombstones a share owned by the caller.
func (h *ShareHandler) Delete(c fiber.Ctx) error {
	urn := callerUrn(c)
	if urn == "" {
		return jsonError(c, fiber.StatusUnauthorized, "Invalid URN")
	}

	if err := h.svc.DeleteShare(c.Context(), urn, c.Params("token")); err != nil {
		return serviceError(c, h.log, err)
	}

	return jsonSuccess(c, fiber.Map{
		"message": "share deleted successfully",
	})
}

func retrievalOutcome(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, service.ErrExpired):
		return metrics.OutcomeExpired
	case errors.Is(err, service.ErrQuotaExhausted):
		return metrics.OutcomeQuota
	case errors.Is(err, service.ErrWrongPassword):
		return metrics.OutcomeWrongPassword
	case errors.Is(err, service.ErrUnsupportedScheme):
		return metrics.OutcomeLegacyScheme
	default:
		return metrics.OutcomeError
	}
}
