package models

import "time"

// FilePayload carries an uploaded file in a create-share request.
type FilePayload struct {
	Data string `json:"data"` // base64
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateShareRequest is the body of POST /api/create-share.
type CreateShareRequest struct {
	Title          string       `json:"title"`
	Content        string       `json:"content,omitempty"`
	File           *FilePayload `json:"file,omitempty"`
	Password       string       `json:"password"`
	ExpiryMinutes  int          `json:"expiryMinutes"`
	CustomSlug     string       `json:"customSlug,omitempty"`
	MaxAccessCount *int64       `json:"maxAccessCount,omitempty"`
}

// CreateShareResponse is the success body of POST /api/create-share.
type CreateShareResponse struct {
	ShareLink  string    `json:"shareLink"`
	ShareToken string    `json:"shareToken"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CustomSlug string    `json:"customSlug,omitempty"`
}

// GetShareRequest is the body of POST /api/get-share.
type GetShareRequest struct {
	Identifier string `json:"identifier"` // share token or custom slug
	Password   string `json:"password"`
}

// GetShareResponse is the success body of POST /api/get-share.
type GetShareResponse struct {
	Title          string    `json:"title"`
	Content        *string   `json:"content"`
	FileData       *string   `json:"fileData"` // base64
	ContentType    *string   `json:"contentType"`
	FileName       string    `json:"fileName"`
	ExpiresAt      time.Time `json:"expiresAt"`
	AccessCount    int64     `json:"accessCount"`
	MaxAccessCount *int64    `json:"maxAccessCount"`
}

// GenerateUrnRequest is the body of POST /api/generate-urn.
type GenerateUrnRequest struct {
	Email string `json:"email,omitempty"`
}

// GenerateUrnResponse is the success body of POST /api/generate-urn.
type GenerateUrnResponse struct {
	Urn   string `json:"urn"`
	UrnID string `json:"urn_id"`
}

// ShareSummary is the non-secret listing view of a share for its owner.
type ShareSummary struct {
	ShareToken     string     `json:"share_token"`
	CustomSlug     *string    `json:"custom_slug"`
	Title          string     `json:"title"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AccessCount    int64      `json:"access_count"`
	MaxAccessCount *int64     `json:"max_access_count"`
	DeletedAt      *time.Time `json:"deleted_at"`
}
