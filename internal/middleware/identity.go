package middleware

import (
	"github.com/gofiber/fiber/v3"
)

// UrnLocalKey is the Locals key under which the caller's URN value is stored.
const UrnLocalKey = "urn"

// urnHeader is the request header carrying the caller's pseudo-identity.
const urnHeader = "X-Urn"

// Identity extracts the caller's URN from the request. The URN value is an
// unguessable bearer credential; it is matched against the ledger by the
// service layer, never trusted here.
type Identity struct{}

// NewIdentity creates a new identity middleware instance.
func NewIdentity() *Identity {
	return &Identity{}
}

// RequireUrn ensures the request presents a URN, rejecting it otherwise.
func (m *Identity) RequireUrn(c fiber.Ctx) error {
	urn := extractUrn(c)
	if urn == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status": "error",
			"error":  "Invalid URN",
		})
	}

	c.Locals(UrnLocalKey, urn)
	return c.Next()
}

// OptionalUrn loads the URN if present, but doesn't require one.
func (m *Identity) OptionalUrn(c fiber.Ctx) error {
	if urn := extractUrn(c); urn != "" {
		c.Locals(UrnLocalKey, urn)
	}
	return c.Next()
}

func extractUrn(c fiber.Ctx) string {
	if v := c.Get(urnHeader); v != "" {
		return v
	}
	return c.Cookies("urn")
}
