// Package service orchestrates the sharing protocol: policy validation, key
// derivation, encryption, ledger and blob writes on the create path, and the
// mirror-image checks on the retrieve path.
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sealshare/internal/config"
	"sealshare/internal/cryptox"
	"sealshare/internal/db"
	"sealshare/internal/models"
	"sealshare/internal/ratelimit"
	"sealshare/internal/validation"
)

// Ledger is the share/urn persistence surface the service depends on.
type Ledger interface {
	CreateShare(ctx context.Context, share *models.Share) error
	GetShareByIdentifier(ctx context.Context, identifier string) (*models.Share, error)
	IncrementAccessCount(ctx context.Context, id uuid.UUID) (int64, error)
	SoftDeleteShareByOwner(ctx context.Context, shareToken string, urnID uuid.UUID) error
	GetSharesByUrn(ctx context.Context, urnID uuid.UUID) ([]models.Share, error)
	CreateUrn(ctx context.Context, urn *models.Urn) error
	GetUrnByValue(ctx context.Context, value string) (*models.Urn, error)
	TouchUrn(ctx context.Context, value string) error
}

// BlobStore holds ciphertext for file payloads.
type BlobStore interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Get(ctx context.Context, path string) ([]byte, error)
	Delete(ctx context.Context, path string) error
}

// AccessLimiter is the durable attempt-budget check.
type AccessLimiter interface {
	Allow(ctx context.Context, op, key string, max int, window time.Duration) (bool, error)
}

// ShareNotifier receives share lifecycle events. May be nil.
type ShareNotifier interface {
	NotifyShareCreated(urn *models.Urn, title, shareLink string, expiresAt time.Time)
}

// Service implements the public sharing operations.
type Service struct {
	ledger   Ledger
	blobs    BlobStore
	limiter  AccessLimiter
	notifier ShareNotifier
	cfg      *config.Config
	log      *slog.Logger

	now func() time.Time
}

// New creates the sharing service. The notifier may be nil.
func New(ledger Ledger, blobs BlobStore, limiter AccessLimiter, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		ledger:  ledger,
		blobs:   blobs,
		limiter: limiter,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// WithNotifier attaches a share lifecycle notifier.
func (s *Service) WithNotifier(n ShareNotifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) timeout() time.Duration {
	return time.Duration(s.cfg.RequestTimeoutSeconds) * time.Second
}

// newToken returns a 256-bit random identifier as 64 hex characters.
func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// GenerateUrn mints an anonymous pseudo-identity, rate limited per client IP.
func (s *Service) GenerateUrn(ctx context.Context, clientIP, email string) (*models.GenerateUrnResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	ok, err := s.limiter.Allow(ctx, ratelimit.OpGenerateUrn, clientIP,
		s.cfg.GenerateUrnsPerHour, time.Hour)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRateLimited
	}

	if email != "" && !validation.ValidateEmail(email) {
		return nil, validationError("Invalid email format")
	}

	value, err := newToken()
	if err != nil {
		return nil, err
	}

	urn := &models.Urn{
		Urn:         value,
		IsAnonymous: email == "",
	}
	if email != "" {
		urn.Email = &email
	}
	if err := s.ledger.CreateUrn(ctx, urn); err != nil {
		return nil, fmt.Errorf("failed to create urn: %w", err)
	}

	return &models.GenerateUrnResponse{Urn: urn.Urn, UrnID: urn.ID.String()}, nil
}

// CreateShare encrypts a payload under a password-derived key and records the
// share. The blob is written before the record so no record ever points at
// unwritten data; an insert failure rolls the blob back.
func (s *Service) CreateShare(ctx context.Context, urnValue string, req *models.CreateShareRequest) (*models.CreateShareResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	urn, err := s.ledger.GetUrnByValue(ctx, urnValue)
	if err != nil {
		if errors.Is(err, db.ErrUrnNotFound) {
			return nil, ErrInvalidUrn
		}
		return nil, err
	}

	ok, err := s.limiter.Allow(ctx, ratelimit.OpCreateShare, urn.Urn,
		s.cfg.CreateSharesPerHour, time.Hour)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRateLimited
	}

	if err := s.ledger.TouchUrn(ctx, urn.Urn); err != nil {
		s.log.Warn("failed to touch urn", "error", err)
	}

	if ok, msg := validation.ValidatePassword(req.Password); !ok {
		return nil, validationError(msg)
	}
	if ok, msg := validation.ValidateExpiry(req.ExpiryMinutes); !ok {
		return nil, validationError(msg)
	}

	var customSlug *string
	if req.CustomSlug != "" {
		slug := validation.NormalizeSlug(req.CustomSlug)
		if !validation.ValidateSlug(slug) {
			return nil, validationError("Custom slug may only contain letters, numbers, hyphens, and underscores")
		}
		if s.cfg.IsReservedSlug(slug) {
			return nil, validationError("This slug is reserved")
		}
		customSlug = &slug
	}

	// Zero or negative means unlimited, matching the null the ledger stores
	// when no cap is requested.
	maxAccessCount := req.MaxAccessCount
	if maxAccessCount != nil && *maxAccessCount <= 0 {
		maxAccessCount = nil
	}

	plaintext, originalName, contentType, err := s.extractPayload(req)
	if err != nil {
		return nil, err
	}
	if int64(len(plaintext)) > s.cfg.MaxPayloadBytes {
		return nil, ErrPayloadTooLarge
	}

	// The verifier gates retrieval attempts; it is derived independently of
	// the content key.
	passwordHash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}
	salt, err := cryptox.NewSalt()
	if err != nil {
		return nil, err
	}
	nonce, err := cryptox.NewNonce()
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveKey(req.Password, salt, s.cfg.KDFIterations)
	toEncrypt, compressed := cryptox.Compress(plaintext)
	ciphertext, err := cryptox.Encrypt(key, nonce, toEncrypt)
	if err != nil {
		return nil, err
	}

	now := s.now()
	share := &models.Share{
		UrnID:        urn.ID,
		ShareToken:   token,
		CustomSlug:   customSlug,
		Title:        req.Title,
		OriginalName: originalName,
		PasswordHash: passwordHash,
		CryptoParams: models.CryptoParams{
			Scheme:     models.SchemeAESGCM,
			KDF:        models.KDFName,
			Iterations: s.cfg.KDFIterations,
			Salt:       salt,
			Nonce:      nonce,
			Compressed: compressed,
		},
		ExpiresAt:      now.Add(time.Duration(req.ExpiryMinutes) * time.Minute),
		MaxAccessCount: maxAccessCount,
	}

	isFile := req.File != nil
	if isFile {
		path := token + "/" + req.File.Name
		if err := s.blobs.Put(ctx, path, ciphertext, req.File.Type); err != nil {
			return nil, fmt.Errorf("failed to upload file: %w", err)
		}
		share.FilePath = &path
		share.ContentType = &contentType
	} else {
		inline := base64.StdEncoding.EncodeToString(ciphertext)
		share.EncryptedContent = &inline
	}

	if err := s.insertWithTokenRetry(ctx, share, ciphertext, isFile, req); err != nil {
		return nil, err
	}

	resp := &models.CreateShareResponse{
		ShareToken: share.ShareToken,
		ExpiresAt:  share.ExpiresAt,
	}
	if customSlug != nil {
		resp.CustomSlug = *customSlug
		resp.ShareLink = s.cfg.BaseURL + "/s/" + *customSlug
	} else {
		resp.ShareLink = s.cfg.BaseURL + "/s/" + share.ShareToken
	}

	if s.notifier != nil {
		s.notifier.NotifyShareCreated(urn, share.Title, resp.ShareLink, share.ExpiresAt)
	}
	return resp, nil
}

// insertWithTokenRetry inserts the record, regenerating the token exactly
// once on the astronomically unlikely token collision. Any terminal failure
// removes an already-written blob so ciphertext is never left without a
// record.
func (s *Service) insertWithTokenRetry(ctx context.Context, share *models.Share, ciphertext []byte, isFile bool, req *models.CreateShareRequest) error {
	err := s.ledger.CreateShare(ctx, share)
	if errors.Is(err, db.ErrDuplicateToken) {
		token, tokenErr := newToken()
		if tokenErr != nil {
			err = tokenErr
		} else {
			if isFile {
				oldPath := *share.FilePath
				newPath := token + "/" + req.File.Name
				if putErr := s.blobs.Put(ctx, newPath, ciphertext, req.File.Type); putErr != nil {
					err = putErr
				} else {
					share.FilePath = &newPath
					if delErr := s.blobs.Delete(ctx, oldPath); delErr != nil {
						s.log.Warn("failed to remove superseded blob", "path", oldPath, "error", delErr)
					}
				}
			}
			if err == nil || errors.Is(err, db.ErrDuplicateToken) {
				share.ShareToken = token
				err = s.ledger.CreateShare(ctx, share)
			}
		}
	}

	if err != nil {
		if isFile && share.FilePath != nil {
			if delErr := s.blobs.Delete(ctx, *share.FilePath); delErr != nil {
				s.log.Error("failed to roll back blob after insert failure", "path", *share.FilePath, "error", delErr)
			}
		}
		if errors.Is(err, db.ErrDuplicateSlug) {
			return validationError("Custom slug is already taken")
		}
		return fmt.Errorf("failed to create share: %w", err)
	}
	return nil
}

func (s *Service) extractPayload(req *models.CreateShareRequest) (plaintext []byte, originalName, contentType string, err error) {
	switch {
	case req.Content != "" && req.File == nil:
		if ok, msg := validation.ValidateURL(req.Content); !ok {
			return nil, "", "", validationError(msg)
		}
		return []byte(req.Content), req.Content, "", nil
	case req.File != nil && req.Content == "":
		data, decErr := base64.StdEncoding.DecodeString(req.File.Data)
		if decErr != nil {
			return nil, "", "", validationError("Invalid file data")
		}
		return data, req.File.Name, req.File.Type, nil
	default:
		return nil, "", "", validationError("Either content or file must be provided")
	}
}

// RetrieveShare resolves an identifier, enforces policy against fresh state,
// verifies the password and decrypts. The access counter is incremented only
// after a successful unlock; failed attempts never consume quota.
func (s *Service) RetrieveShare(ctx context.Context, req *models.GetShareRequest) (*models.GetShareResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	if req.Identifier == "" || req.Password == "" {
		return nil, validationError("Identifier and password are required")
	}

	ok, err := s.limiter.Allow(ctx, ratelimit.OpGetShare, req.Identifier,
		s.cfg.RetrieveAttempts, time.Duration(s.cfg.RetrieveWindowMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRateLimited
	}

	share, err := s.ledger.GetShareByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, db.ErrShareNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if share.Expired(s.now()) {
		return nil, ErrExpired
	}
	if share.QuotaExhausted() {
		return nil, ErrQuotaExhausted
	}

	match, err := cryptox.VerifyPassword(req.Password, share.PasswordHash)
	if err != nil {
		s.log.Error("malformed password verifier", "share_id", share.ID, "error", err)
		return nil, ErrCorruptedRecord
	}
	if !match {
		return nil, ErrWrongPassword
	}

	if err := cryptox.CheckScheme(share.CryptoParams.Scheme); err != nil {
		if errors.Is(err, cryptox.ErrLegacyScheme) {
			return nil, ErrUnsupportedScheme
		}
		s.log.Error("unknown encryption scheme", "share_id", share.ID, "error", err)
		return nil, ErrCorruptedRecord
	}

	ciphertext, err := s.loadCiphertext(ctx, share)
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveKey(req.Password, share.CryptoParams.Salt, share.CryptoParams.Iterations)
	plaintext, err := cryptox.Decrypt(key, share.CryptoParams.Nonce, ciphertext)
	if err != nil {
		// The verifier matched, so this is an integrity failure, not a wrong
		// password.
		s.log.Error("decryption failed despite verifier match", "share_id", share.ID, "error", err)
		return nil, ErrCorruptedRecord
	}
	if share.CryptoParams.Compressed {
		plaintext, err = cryptox.Decompress(plaintext)
		if err != nil {
			s.log.Error("decompression failed after decryption", "share_id", share.ID, "error", err)
			return nil, ErrCorruptedRecord
		}
	}

	accessCount, err := s.ledger.IncrementAccessCount(ctx, share.ID)
	switch {
	case errors.Is(err, db.ErrQuotaExhausted):
		if share.MaxAccessCount == nil {
			// An unlimited share never trips the quota guard; the row must
			// have vanished under us.
			return nil, ErrNotFound
		}
		// A parallel request consumed the last grant between our policy check
		// and this increment. The conditional update kept the counter at its
		// cap; serving this response is the single accepted extra grant.
		accessCount = *share.MaxAccessCount
	case errors.Is(err, db.ErrShareNotFound):
		// Concurrently tombstoned or purged after we resolved it.
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to record access: %w", err)
	}

	resp := &models.GetShareResponse{
		Title:          share.Title,
		ContentType:    share.ContentType,
		FileName:       share.OriginalName,
		ExpiresAt:      share.ExpiresAt,
		AccessCount:    accessCount,
		MaxAccessCount: share.MaxAccessCount,
	}
	if share.IsInline() {
		content := string(plaintext)
		resp.Content = &content
	} else {
		fileData := base64.StdEncoding.EncodeToString(plaintext)
		resp.FileData = &fileData
	}
	return resp, nil
}

func (s *Service) loadCiphertext(ctx context.Context, share *models.Share) ([]byte, error) {
	if share.IsInline() {
		ciphertext, err := base64.StdEncoding.DecodeString(*share.EncryptedContent)
		if err != nil {
			s.log.Error("inline ciphertext is not valid base64", "share_id", share.ID)
			return nil, ErrCorruptedRecord
		}
		return ciphertext, nil
	}
	ciphertext, err := s.blobs.Get(ctx, *share.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve file: %w", err)
	}
	return ciphertext, nil
}

// ListShares returns the owner-scoped share history for a URN.
func (s *Service) ListShares(ctx context.Context, urnValue string) ([]models.ShareSummary, error) {
	urn, err := s.ledger.GetUrnByValue(ctx, urnValue)
	if err != nil {
		if errors.Is(err, db.ErrUrnNotFound) {
			return nil, ErrInvalidUrn
		}
		return nil, err
	}

	shares, err := s.ledger.GetSharesByUrn(ctx, urn.ID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ShareSummary, 0, len(shares))
	for _, share := range shares {
		summaries = append(summaries, models.ShareSummary{
			ShareToken:     share.ShareToken,
			CustomSlug:     share.CustomSlug,
			Title:          share.Title,
			CreatedAt:      share.CreatedAt,
			ExpiresAt:      share.ExpiresAt,
			AccessCount:    share.AccessCount,
			MaxAccessCount: share.MaxAccessCount,
			DeletedAt:      share.DeletedAt,
		})
	}
	return summaries, nil
}

// DeleteShare tombstones a share owned by the URN. The blob stays until the
// housekeeping reaper reclaims it.
func (s *Service) DeleteShare(ctx context.Context, urnValue, shareToken string) error {
	urn, err := s.ledger.GetUrnByValue(ctx, urnValue)
	if err != nil {
		if errors.Is(err, db.ErrUrnNotFound) {
			return ErrInvalidUrn
		}
		return err
	}

	if err := s.ledger.SoftDeleteShareByOwner(ctx, shareToken, urn.ID); err != nil {
		if errors.Is(err, db.ErrShareNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
