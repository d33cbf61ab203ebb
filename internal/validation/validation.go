package validation

import (
	"net/url"
	"regexp"
	"strings"

	"sealshare/internal/models"
)

// SlugPattern defines the valid custom slug format: alphanumeric, hyphens,
// underscores.
var SlugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// MinPasswordLength is the minimum share password length.
const MinPasswordLength = 8

// MaxSlugLength bounds caller-chosen slugs.
const MaxSlugLength = 100

// ValidateSlug checks if a custom slug matches the allowed pattern.
func ValidateSlug(slug string) bool {
	if slug == "" || len(slug) > MaxSlugLength {
		return false
	}
	return SlugPattern.MatchString(slug)
}

// NormalizeSlug lowercases a slug so lookups are case-insensitive.
func NormalizeSlug(slug string) string {
	return strings.ToLower(slug)
}

// ValidatePassword checks the share password against the minimum policy.
func ValidatePassword(password string) (bool, string) {
	if len(password) < MinPasswordLength {
		return false, "Password must be at least 8 characters"
	}
	return true, ""
}

// ValidateExpiry checks the requested TTL against the allowed window.
func ValidateExpiry(minutes int) (bool, string) {
	if minutes < models.MinExpiryMinutes || minutes > models.MaxExpiryMinutes {
		return false, "Expiry must be between 10 minutes and 2 days"
	}
	return true, ""
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https
// only). This prevents javascript:, data:, vbscript:, and other dangerous URL
// schemes from being shared.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format. URL must start with http:// or https://"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "Invalid URL format. URL must start with http:// or https://"
	}

	if u.Host == "" {
		return false, "Invalid URL format. URL must start with http:// or https://"
	}

	return true, ""
}

// ValidateEmail checks an optional URN contact email.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
