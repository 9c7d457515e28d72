package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/unionhome/internal/api/response"
	"github.com/kiranshivaraju/unionhome/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	apiKeyPrefix  = "uh_"
	apiKeyBytes   = 24
	maxKeyNameLen = 100
)

var grantableScopes = map[string]bool{
	models.ScopeWrite:    true,
	models.ScopePlatform: true,
}

// KeyCreator persists new API keys.
type KeyCreator interface {
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
}

type createKeyResponse struct {
	*models.APIKey
	// Key is the raw secret. It is returned once and never stored.
	Key string `json:"key"`
}

// NewCreateKeyHandler returns an http.HandlerFunc for POST /api/v1/admin/keys.
// The key belongs to the union named by union_slug.
func NewCreateKeyHandler(scope *Scope, s KeyCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UnionSlug string   `json:"union_slug"`
			Name      string   `json:"name"`
			Scopes    []string `json:"scopes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}
		if len(req.Name) > maxKeyNameLen {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is too long", nil)
			return
		}
		if len(req.Scopes) == 0 {
			req.Scopes = []string{models.ScopeWrite}
		}
		for _, sc := range req.Scopes {
			if !grantableScopes[sc] {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					fmt.Sprintf("unknown scope %q", sc), nil)
				return
			}
		}

		u, ok := scope.resolve(w, r, req.UnionSlug)
		if !ok {
			return
		}

		rawKey, err := generateKey()
		if err != nil {
			slog.Error("generate api key failed", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("hash api key failed", "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		now := time.Now().UTC()
		key := &models.APIKey{
			ID:        uuid.New(),
			UnionID:   u.ID,
			Name:      req.Name,
			KeyHash:   string(hash),
			KeyPrefix: rawKey[:models.KeyPrefixLen],
			Scopes:    req.Scopes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.CreateAPIKey(r.Context(), key); err != nil {
			slog.Error("create api key failed", "union_id", u.ID, "error", err)
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		slog.Info("api key created", "union_id", u.ID, "key_prefix", key.KeyPrefix, "scopes", key.Scopes)
		response.Created(w, createKeyResponse{APIKey: key, Key: rawKey})
	}
}

func generateKey() (string, error) {
	b := make([]byte, apiKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return apiKeyPrefix + hex.EncodeToString(b), nil
}
