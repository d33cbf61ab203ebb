package service

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sealshare/internal/config"
	"sealshare/internal/db"
	"sealshare/internal/models"
	"sealshare/internal/ratelimit"
)

type fakeLedger struct {
	mu     sync.Mutex
	urns   map[string]*models.Urn
	shares map[uuid.UUID]*models.Share

	createShareErr error
	incrementErr   error
	// failTokens counts how many CreateShare calls to fail with
	// ErrDuplicateToken before succeeding.
	failTokens int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		urns:   make(map[string]*models.Urn),
		shares: make(map[uuid.UUID]*models.Share),
	}
}

func (f *fakeLedger) CreateShare(_ context.Context, share *models.Share) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createShareErr != nil {
		return f.createShareErr
	}
	if f.failTokens > 0 {
		f.failTokens--
		return db.ErrDuplicateToken
	}
	if share.CustomSlug != nil {
		for _, existing := range f.shares {
			if existing.CustomSlug != nil && *existing.CustomSlug == *share.CustomSlug && existing.DeletedAt == nil {
				return db.ErrDuplicateSlug
			}
		}
	}
	share.ID = uuid.New()
	share.CreatedAt = time.Now()
	copied := *share
	f.shares[share.ID] = &copied
	return nil
}

func (f *fakeLedger) GetShareByIdentifier(_ context.Context, identifier string) (*models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, share := range f.shares {
		if share.DeletedAt != nil {
			continue
		}
		if share.ShareToken == identifier || (share.CustomSlug != nil && *share.CustomSlug == identifier) {
			copied := *share
			return &copied, nil
		}
	}
	return nil, db.ErrShareNotFound
}

func (f *fakeLedger) IncrementAccessCount(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.incrementErr != nil {
		return 0, f.incrementErr
	}
	share, ok := f.shares[id]
	if !ok || share.DeletedAt != nil {
		return 0, db.ErrShareNotFound
	}
	if share.MaxAccessCount != nil && share.AccessCount >= *share.MaxAccessCount {
		return 0, db.ErrQuotaExhausted
	}
	share.AccessCount++
	return share.AccessCount, nil
}

func (f *fakeLedger) SoftDeleteShareByOwner(_ context.Context, shareToken string, urnID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, share := range f.shares {
		if share.ShareToken == shareToken && share.UrnID == urnID {
			if share.DeletedAt == nil {
				now := time.Now()
				share.DeletedAt = &now
			}
			return nil
		}
	}
	return db.ErrShareNotFound
}

func (f *fakeLedger) GetSharesByUrn(_ context.Context, urnID uuid.UUID) ([]models.Share, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Share
	for _, share := range f.shares {
		if share.UrnID == urnID {
			out = append(out, *share)
		}
	}
	return out, nil
}

func (f *fakeLedger) CreateUrn(_ context.Context, urn *models.Urn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	urn.ID = uuid.New()
	urn.CreatedAt = time.Now()
	f.urns[urn.Urn] = urn
	return nil
}

func (f *fakeLedger) GetUrnByValue(_ context.Context, value string) (*models.Urn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	urn, ok := f.urns[value]
	if !ok {
		return nil, db.ErrUrnNotFound
	}
	return urn, nil
}

func (f *fakeLedger) TouchUrn(_ context.Context, value string) error {
	return nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) Put(_ context.Context, path string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[path] = append([]byte(nil), data...)
	return nil
}

func (f *fakeBlobs) Get(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeBlobs) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	return nil
}

type fakeLimiter struct {
	denyOps map[string]bool
}

func (f *fakeLimiter) Allow(_ context.Context, op, _ string, _ int, _ time.Duration) (bool, error) {
	if f.denyOps != nil && f.denyOps[op] {
		return false, nil
	}
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		BaseURL:               "https://share.test",
		KDFIterations:         1000, // keep tests fast, production uses 100k
		MaxPayloadBytes:       1 << 20,
		RequestTimeoutSeconds: 5,
		CreateSharesPerHour:   20,
		GenerateUrnsPerHour:   5,
		RetrieveAttempts:      10,
		RetrieveWindowMinutes: 15,
	}
}

func testService(t *testing.T) (*Service, *fakeLedger, *fakeBlobs, *fakeLimiter) {
	t.Helper()
	ledger := newFakeLedger()
	blobs := newFakeBlobs()
	limiter := &fakeLimiter{}
	svc := New(ledger, blobs, limiter, testConfig(), slog.New(slog.DiscardHandler))
	return svc, ledger, blobs, limiter
}

func createTestUrn(t *testing.T, ledger *fakeLedger) string {
	t.Helper()
	urn := &models.Urn{Urn: "test-urn-value", IsAnonymous: true}
	require.NoError(t, ledger.CreateUrn(context.Background(), urn))
	return urn.Urn
}

func TestGenerateUrn(t *testing.T) {
	t.Run("creates anonymous urn", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)

		resp, err := svc.GenerateUrn(context.Background(), "10.0.0.1", "")
		require.NoError(t, err)
		assert.Len(t, resp.Urn, 64)

		stored, err := ledger.GetUrnByValue(context.Background(), resp.Urn)
		require.NoError(t, err)
		assert.True(t, stored.IsAnonymous)
		assert.Nil(t, stored.Email)
	})

	t.Run("records contact email", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)

		resp, err := svc.GenerateUrn(context.Background(), "10.0.0.1", "owner@example.org")
		require.NoError(t, err)

		stored, err := ledger.GetUrnByValue(context.Background(), resp.Urn)
		require.NoError(t, err)
		assert.False(t, stored.IsAnonymous)
		require.NotNil(t, stored.Email)
		assert.Equal(t, "owner@example.org", *stored.Email)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		svc, _, _, _ := testService(t)

		_, err := svc.GenerateUrn(context.Background(), "10.0.0.1", "not-an-email")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("rate limited", func(t *testing.T) {
		svc, _, _, limiter := testService(t)
		limiter.denyOps = map[string]bool{ratelimit.OpGenerateUrn: true}

		_, err := svc.GenerateUrn(context.Background(), "10.0.0.1", "")
		assert.ErrorIs(t, err, ErrRateLimited)
	})
}

func TestCreateShare(t *testing.T) {
	t.Run("url share round trip", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		urnValue := createTestUrn(t, ledger)

		resp, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
			Title:         "docs",
			Content:       "https://example.org/doc",
			Password:      "correct-horse-1",
			ExpiryMinutes: 60,
		})
		require.NoError(t, err)
		assert.Len(t, resp.ShareToken, 64)
		assert.Equal(t, "https://share.test/s/"+resp.ShareToken, resp.ShareLink)

		got, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: resp.ShareToken,
			Password:   "correct-horse-1",
		})
		require.NoError(t, err)
		require.NotNil(t, got.Content)
		assert.Equal(t, "https://example.org/doc", *got.Content)
		assert.Equal(t, int64(1), got.AccessCount)
	})

	t.Run("unknown urn", func(t *testing.T) {
		svc, _, _, _ := testService(t)

		_, err := svc.CreateShare(context.Background(), "no-such-urn", &models.CreateShareRequest{
			Content:       "https://example.org",
			Password:      "correct-horse-1",
			ExpiryMinutes: 60,
		})
		assert.ErrorIs(t, err, ErrInvalidUrn)
	})

	t.Run("rate limited", func(t *testing.T) {
		svc, ledger, _, limiter := testService(t)
		urnValue := createTestUrn(t, ledger)
		limiter.denyOps = map[string]bool{ratelimit.OpCreateShare: true}

		_, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
			Content:       "https://example.org",
			Password:      "correct-horse-1",
			ExpiryMinutes: 60,
		})
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("input validation", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		urnValue := createTestUrn(t, ledger)

		tests := []struct {
			name string
			req  models.CreateShareRequest
			msg  string
		}{
			{
				name: "short password",
				req: models.CreateShareRequest{
					Content: "https://example.org", Password: "short", ExpiryMinutes: 60,
				},
				msg: "Password must be at least 8 characters",
			},
			{
				name: "expiry too short",
				req: models.CreateShareRequest{
					Content: "https://example.org", Password: "correct-horse-1", ExpiryMinutes: 5,
				},
				msg: "Expiry must be between 10 minutes and 2 days",
			},
			{
				name: "expiry too long",
				req: models.CreateShareRequest{
					Content: "https://example.org", Password: "correct-horse-1", ExpiryMinutes: 3000,
				},
				msg: "Expiry must be between 10 minutes and 2 days",
			},
			{
				name: "javascript url",
				req: models.CreateShareRequest{
					Content: "javascript:alert(1)", Password: "correct-horse-1", ExpiryMinutes: 60,
				},
				msg: "Invalid URL format. URL must start with http:// or https://",
			},
			{
				name: "bad slug characters",
				req: models.CreateShareRequest{
					Content: "https://example.org", Password: "correct-horse-1",
					ExpiryMinutes: 60, CustomSlug: "has spaces!",
				},
				msg: "Custom slug may only contain letters, numbers, hyphens, and underscores",
			},
			{
				name: "no payload",
				req: models.CreateShareRequest{
					Password: "correct-horse-1", ExpiryMinutes: 60,
				},
				msg: "Either content or file must be provided",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.CreateShare(context.Background(), urnValue, &tt.req)
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.msg, verr.Message)
			})
		}
	})

	t.Run("reserved slug rejected", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		urnValue := createTestUrn(t, ledger)
		svc.cfg.ReservedSlugs = map[string]bool{"api": true}

		_, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
			Content:       "https://example.org",
			Password:      "correct-horse-1",
			ExpiryMinutes: 60,
			CustomSlug:    "API",
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "This slug is reserved", verr.Message)
	})

	t.Run("custom slug normalized and resolvable", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		urnValue := createTestUrn(t, ledger)

		resp, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
			Content:       "https://example.org/doc",
			Password:      "correct-horse-1",
			ExpiryMinutes: 60,
			CustomSlug:    "My-Slug",
		})
		require.NoError(t, err)
		assert.Equal(t, "my-slug", resp.CustomSlug)
		assert.Equal(t, "https://share.test/s/my-slug", resp.ShareLink)

		got, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: "my-slug",
			Password:   "correct-horse-1",
		})
		require.NoError(t, err)
		require.NotNil(t, got.Content)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		urnValue := createTestUrn(t, ledger)

		req := models.CreateShareRequest{
			Content:       "https://example.org",
			Password:      "correct-horse-1",
			ExpiryMinutes: 60,
			CustomSlug:    "taken",
		}
		_, err := svc.CreateShare(context.Background(), urnValue, &req)
		require.NoError(t, err)

		_, err = svc.CreateShare(context.Background(), urnValue, &req)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Custom slug is already taken", verr.Message)
	})

	t.Run("file share round trip", func(t *testing.T) {
		svc, ledger, blobs, _ := testService(t)
		urnValue := createTestUrn(t, ledger)

		fileBytes := []byte("%PDF-1.4 pretend this is a pdf")
		resp, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
			Title:         "report",
			Password:      "correct-horse-1",
			ExpiryMinutes: 60,
			File: &models.FilePayload{
				Data: base64.StdEncoding.EncodeToString(fileBytes),
				Name: "report.pdf",
				Type: "application/pdf",
			},
		})
		require.NoError(t, err)

		// Ciphertext lives in the blob store, not the record.
		blobs.mu.Lock()
		stored, ok := blobs.objects[resp.ShareToken+"/report.pdf"]
		blobs.mu.Unlock()
		require.True(t, ok)
		assert.NotContains(t, string(stored), "pretend")

		got, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: resp.ShareToken,
			Password:   "correct-horse-1",
		})
		require.NoError(t, err)
		require.NotNil(t, got.FileData)
		decoded, err := base64.StdEncoding.DecodeString(*got.FileData)
		require.NoError(t, err)
		assert.Equal(t, fileBytes, decoded)
		assert.Equal(t, "report.pdf", got.FileName)
		require.NotNil(t, got.ContentType)
		assert.Equal(t, "application/pdf", *got.ContentType)
	})

	t.Run("payload too large", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		urnValue := createTestUrn(t, ledger)

		big := make([]byte, 2<<20)
		_, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
			Password:      "correct-horse-1",
			ExpiryMinutes: 60,
			File: &models.FilePayload{
				Data: base64.StdEncoding.EncodeToString(big),
				Name: "big.bin",
				Type: "application/octet-stream",
			},
		})
		assert.ErrorIs(t, err, ErrPayloadTooLarge)
	})

	t.Run("zero max access count means unlimited", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		urnValue := createTestUrn(t, ledger)

		zero := int64(0)
		resp, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
			Content:        "https://example.org/doc",
			Password:       "correct-horse-1",
			ExpiryMinutes:  60,
			MaxAccessCount: &zero,
		})
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			got, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
				Identifier: resp.ShareToken, Password: "correct-horse-1",
			})
			require.NoError(t, err)
			assert.Nil(t, got.MaxAccessCount)
		}
	})

	t.Run("token collision regenerates once", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		urnValue := createTestUrn(t, ledger)
		ledger.failTokens = 1

		resp, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
			Content:       "https://example.org",
			Password:      "correct-horse-1",
			ExpiryMinutes: 60,
		})
		require.NoError(t, err)
		assert.Len(t, resp.ShareToken, 64)
	})

	t.Run("blob rolled back when insert fails", func(t *testing.T) {
		svc, ledger, blobs, _ := testService(t)
		urnValue := createTestUrn(t, ledger)
		ledger.createShareErr = errors.New("db down")

		_, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
			Password:      "correct-horse-1",
			ExpiryMinutes: 60,
			File: &models.FilePayload{
				Data: base64.StdEncoding.EncodeToString([]byte("payload")),
				Name: "f.txt",
				Type: "text/plain",
			},
		})
		require.Error(t, err)

		blobs.mu.Lock()
		defer blobs.mu.Unlock()
		assert.Empty(t, blobs.objects)
	})
}

func TestRetrieveShare(t *testing.T) {
	maxTwo := int64(2)

	createShare := func(t *testing.T, svc *Service, ledger *fakeLedger, max *int64) string {
		t.Helper()
		urnValue := createTestUrn(t, ledger)
		resp, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
			Content:        "https://example.org/doc",
			Password:       "correct-horse-1",
			ExpiryMinutes:  60,
			MaxAccessCount: max,
		})
		require.NoError(t, err)
		return resp.ShareToken
	}

	t.Run("not found", func(t *testing.T) {
		svc, _, _, _ := testService(t)

		_, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: "missing", Password: "correct-horse-1",
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("wrong password does not consume quota", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		token := createShare(t, svc, ledger, &maxTwo)

		for i := 0; i < 5; i++ {
			_, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
				Identifier: token, Password: "wrong-password",
			})
			assert.ErrorIs(t, err, ErrWrongPassword)
		}

		got, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: token, Password: "correct-horse-1",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.AccessCount)
	})

	t.Run("expired", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		token := createShare(t, svc, ledger, nil)

		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

		_, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: token, Password: "correct-horse-1",
		})
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("quota exhausted", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		token := createShare(t, svc, ledger, &maxTwo)

		for i := 0; i < 2; i++ {
			_, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
				Identifier: token, Password: "correct-horse-1",
			})
			require.NoError(t, err)
		}

		_, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: token, Password: "correct-horse-1",
		})
		assert.ErrorIs(t, err, ErrQuotaExhausted)
	})

	t.Run("quota race after unlock still serves", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		token := createShare(t, svc, ledger, &maxTwo)

		// Simulate a concurrent reader taking the last grant between the
		// policy check and the increment.
		share, err := ledger.GetShareByIdentifier(context.Background(), token)
		require.NoError(t, err)
		ledger.mu.Lock()
		ledger.shares[share.ID].AccessCount = 1
		ledger.mu.Unlock()

		got1, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: token, Password: "correct-horse-1",
		})
		require.NoError(t, err)
		assert.Equal(t, maxTwo, got1.AccessCount)
	})

	t.Run("deleted between lookup and increment", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		token := createShare(t, svc, ledger, nil)
		ledger.incrementErr = db.ErrShareNotFound

		_, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: token, Password: "correct-horse-1",
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("quota signal on an unlimited share is not served", func(t *testing.T) {
		// An unlimited share can only produce a zero-row increment when the
		// record vanished; the response must be a clean not-found, never a
		// dereference of the absent cap.
		svc, ledger, _, _ := testService(t)
		token := createShare(t, svc, ledger, nil)
		ledger.incrementErr = db.ErrQuotaExhausted

		_, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: token, Password: "correct-horse-1",
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("legacy scheme rejected", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		token := createShare(t, svc, ledger, nil)

		share, err := ledger.GetShareByIdentifier(context.Background(), token)
		require.NoError(t, err)
		ledger.mu.Lock()
		ledger.shares[share.ID].CryptoParams.Scheme = models.SchemeXOR
		ledger.mu.Unlock()

		_, err = svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: token, Password: "correct-horse-1",
		})
		assert.ErrorIs(t, err, ErrUnsupportedScheme)
	})

	t.Run("tampered ciphertext is an integrity failure", func(t *testing.T) {
		svc, ledger, _, _ := testService(t)
		token := createShare(t, svc, ledger, nil)

		share, err := ledger.GetShareByIdentifier(context.Background(), token)
		require.NoError(t, err)
		ledger.mu.Lock()
		tampered := base64.StdEncoding.EncodeToString([]byte("not the ciphertext"))
		ledger.shares[share.ID].EncryptedContent = &tampered
		ledger.mu.Unlock()

		_, err = svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: token, Password: "correct-horse-1",
		})
		assert.ErrorIs(t, err, ErrCorruptedRecord)
	})

	t.Run("rate limited before any state is touched", func(t *testing.T) {
		svc, ledger, _, limiter := testService(t)
		token := createShare(t, svc, ledger, &maxTwo)
		limiter.denyOps = map[string]bool{ratelimit.OpGetShare: true}

		_, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: token, Password: "correct-horse-1",
		})
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc, _, _, _ := testService(t)

		_, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
			Identifier: "", Password: "",
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestRetrieveShareOldIterationCount(t *testing.T) {
	// Records created before an iteration bump carry their own count and must
	// stay readable.
	svc, ledger, _, _ := testService(t)
	urnValue := createTestUrn(t, ledger)

	resp, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
		Content:       "https://example.org/doc",
		Password:      "correct-horse-1",
		ExpiryMinutes: 60,
	})
	require.NoError(t, err)

	svc.cfg.KDFIterations = 5000

	got, err := svc.RetrieveShare(context.Background(), &models.GetShareRequest{
		Identifier: resp.ShareToken, Password: "correct-horse-1",
	})
	require.NoError(t, err)
	require.NotNil(t, got.Content)
	assert.Equal(t, "https://example.org/doc", *got.Content)
}

func TestListAndDeleteShares(t *testing.T) {
	svc, ledger, _, _ := testService(t)
	urnValue := createTestUrn(t, ledger)

	resp, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
		Title:         "mine",
		Content:       "https://example.org",
		Password:      "correct-horse-1",
		ExpiryMinutes: 60,
	})
	require.NoError(t, err)

	summaries, err := svc.ListShares(context.Background(), urnValue)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "mine", summaries[0].Title)
	assert.Nil(t, summaries[0].DeletedAt)

	require.NoError(t, svc.DeleteShare(context.Background(), urnValue, resp.ShareToken))

	// The tombstone hides the share from retrieval but keeps it in the
	// owner's history.
	_, err = svc.RetrieveShare(context.Background(), &models.GetShareRequest{
		Identifier: resp.ShareToken, Password: "correct-horse-1",
	})
	assert.ErrorIs(t, err, ErrNotFound)

	summaries, err = svc.ListShares(context.Background(), urnValue)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.NotNil(t, summaries[0].DeletedAt)

	assert.ErrorIs(t, svc.DeleteShare(context.Background(), "nobody", resp.ShareToken), ErrInvalidUrn)
	assert.ErrorIs(t, svc.DeleteShare(context.Background(), urnValue, "not-a-token"), ErrNotFound)
}

func TestGenerateUrnRateLimitKey(t *testing.T) {
	// The urn budget keys on client IP, the create budget on the urn itself.
	// Check the op names line up with the limiter contract.
	svc, ledger, _, limiter := testService(t)
	urnValue := createTestUrn(t, ledger)

	limiter.denyOps = map[string]bool{ratelimit.OpGenerateUrn: true}
	_, err := svc.CreateShare(context.Background(), urnValue, &models.CreateShareRequest{
		Content:       "https://example.org",
		Password:      "correct-horse-1",
		ExpiryMinutes: 60,
	})
	require.NoError(t, err)
}
