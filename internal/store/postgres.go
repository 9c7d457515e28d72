package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/unionhome/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Unions ---

func (s *PostgresStore) GetUnionBySlug(ctx context.Context, slug string) (*models.Union, error) {
	var u models.Union
	err := s.pool.QueryRow(ctx,
		`SELECT id, slug, name, address, phone, email, logo_url, created_at, updated_at
		 FROM unions WHERE slug = $1 LIMIT 1`, slug,
	).Scan(&u.ID, &u.Slug, &u.Name, &u.Address, &u.Phone, &u.Email, &u.LogoURL,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get union by slug: %w", err)
	}
	return &u, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, union_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UnionID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, union_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.UnionID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

// --- Announcements ---

func (s *PostgresStore) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO announcements (id, union_id, title, content, author, pinned, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.UnionID, a.Title, a.Content, a.Author, a.Pinned, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAnnouncements(ctx context.Context, filter AnnouncementFilter) ([]*models.Announcement, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM announcements WHERE union_id = $1`, filter.UnionID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count announcements: %w", err)
	}

	limit, offset := filter.Normalize()
	rows, err := s.pool.Query(ctx,
		`SELECT id, union_id, title, content, author, pinned, created_at, updated_at
		 FROM announcements WHERE union_id = $1
		 ORDER BY pinned DESC, created_at DESC LIMIT $2 OFFSET $3`,
		filter.UnionID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	announcements := []*models.Announcement{}
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.UnionID, &a.Title, &a.Content, &a.Author, &a.Pinned,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan announcement: %w", err)
		}
		announcements = append(announcements, &a)
	}
	return announcements, total, rows.Err()
}

func (s *PostgresStore) GetAnnouncement(ctx context.Context, id uuid.UUID, unionID uuid.UUID) (*models.Announcement, error) {
	var a models.Announcement
	err := s.pool.QueryRow(ctx,
		`SELECT id, union_id, title, content, author, pinned, created_at, updated_at
		 FROM announcements WHERE id = $1 AND union_id = $2`, id, unionID,
	).Scan(&a.ID, &a.UnionID, &a.Title, &a.Content, &a.Author, &a.Pinned, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) DeleteAnnouncement(ctx context.Context, id uuid.UUID, unionID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM announcements WHERE id = $1 AND union_id = $2`, id, unionID)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
