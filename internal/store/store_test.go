package store_test

import (
	"context"
	"math"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/unionhome/internal/store"
	"github.com/kiranshivaraju/unionhome/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("unionhome_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

// insertUnion adds a union row directly; onboarding has no store method.
func insertUnion(t *testing.T, pool *pgxpool.Pool, slug, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO unions (id, slug, name, phone) VALUES ($1, $2, $3, '02-000-0000')`, id, slug, name)
	require.NoError(t, err)
	return id
}

func newAnnouncement(unionID uuid.UUID, title string, pinned bool, at time.Time) *models.Announcement {
	return &models.Announcement{
		ID:        uuid.New(),
		UnionID:   unionID,
		Title:     title,
		Content:   "body of " + title,
		Author:    "office",
		Pinned:    pinned,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

// --- Union Tests ---

func TestGetUnionBySlug_Seeded(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	u, err := s.GetUnionBySlug(context.Background(), "demo")
	require.NoError(t, err)
	assert.Equal(t, "demo", u.Slug)
	assert.Equal(t, "Demo Union", u.Name)
	assert.NotEqual(t, uuid.Nil, u.ID)
}

func TestGetUnionBySlug_Inserted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	id := insertUnion(t, pool, "seoul-metro", "Seoul Metro Union")

	u, err := s.GetUnionBySlug(context.Background(), "seoul-metro")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "02-000-0000", u.Phone)
	assert.Empty(t, u.LogoURL)
}

func TestGetUnionBySlug_NotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.GetUnionBySlug(context.Background(), "no-such-union")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetUnionBySlug_CaseSensitive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	_, err := s.GetUnionBySlug(context.Background(), "DEMO")
	assert.ErrorIs(t, err, store.ErrNotFound, "slug match is exact")
}

// --- API Key Tests ---

func TestAPIKey_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	unionID := insertUnion(t, pool, "keys-union", "Keys")

	now := time.Now().UTC().Truncate(time.Microsecond)
	key := &models.APIKey{
		ID:        uuid.New(),
		UnionID:   unionID,
		Name:      "office-key",
		KeyHash:   "bcrypt-hash-here",
		KeyPrefix: "uh_abcd1",
		Scopes:    []string{"write"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateAPIKey(ctx, key))

	keys, err := s.GetAPIKeyByPrefix(ctx, "uh_abcd1")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, key.ID, keys[0].ID)
	assert.Equal(t, unionID, keys[0].UnionID)
	assert.Equal(t, []string{"write"}, keys[0].Scopes)

	assert.ErrorIs(t, s.CreateAPIKey(ctx, key), store.ErrDuplicateKey)
}

func TestAPIKey_UpdateLastUsed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	unionID := insertUnion(t, pool, "used-union", "Used")
	now := time.Now().UTC().Truncate(time.Microsecond)

	key := &models.APIKey{
		ID: uuid.New(), UnionID: unionID, Name: "k", KeyHash: "h",
		KeyPrefix: "uh_used1", Scopes: []string{"write"}, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateAPIKey(ctx, key))
	require.NoError(t, s.UpdateAPIKeyLastUsed(ctx, key.ID))

	keys, err := s.GetAPIKeyByPrefix(ctx, "uh_used1")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotNil(t, keys[0].LastUsedAt)
}

// --- Announcement Tests ---

func TestAnnouncements_ListOrderAndPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	unionID := insertUnion(t, pool, "board-union", "Board")
	base := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, s.CreateAnnouncement(ctx, newAnnouncement(unionID, "old", false, base.Add(-3*time.Hour))))
	require.NoError(t, s.CreateAnnouncement(ctx, newAnnouncement(unionID, "new", false, base)))
	require.NoError(t, s.CreateAnnouncement(ctx, newAnnouncement(unionID, "pinned", true, base.Add(-10*time.Hour))))

	items, total, err := s.ListAnnouncements(ctx, store.AnnouncementFilter{UnionID: unionID})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, "pinned", items[0].Title)
	assert.Equal(t, "new", items[1].Title)
	assert.Equal(t, "old", items[2].Title)

	page2, total, err := s.ListAnnouncements(ctx, store.AnnouncementFilter{UnionID: unionID, Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page2, 1)
	assert.Equal(t, "old", page2[0].Title)
}

func TestAnnouncements_ScopedByUnion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	unionA := insertUnion(t, pool, "union-a", "A")
	unionB := insertUnion(t, pool, "union-b", "B")

	a := newAnnouncement(unionA, "for A only", false, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, s.CreateAnnouncement(ctx, a))

	items, total, err := s.ListAnnouncements(ctx, store.AnnouncementFilter{UnionID: unionB})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, items)

	_, err = s.GetAnnouncement(ctx, a.ID, unionB)
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = s.DeleteAnnouncement(ctx, a.ID, unionB)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetAnnouncement(ctx, a.ID, unionA)
	require.NoError(t, err)
	assert.Equal(t, "for A only", got.Title)
}

func TestAnnouncements_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	unionID := insertUnion(t, pool, "delete-union", "Del")

	a := newAnnouncement(unionID, "bye", false, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, s.CreateAnnouncement(ctx, a))
	require.NoError(t, s.DeleteAnnouncement(ctx, a.ID, unionID))

	_, err := s.GetAnnouncement(ctx, a.ID, unionID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAnnouncementFilter_Normalize(t *testing.T) {
	tests := []struct {
		name       string
		filter     store.AnnouncementFilter
		wantLimit  int
		wantOffset int
	}{
		{"defaults", store.AnnouncementFilter{}, 20, 0},
		{"page 3", store.AnnouncementFilter{Page: 3, Limit: 10}, 10, 20},
		{"limit capped", store.AnnouncementFilter{Limit: 500}, 100, 0},
		{"negative page", store.AnnouncementFilter{Page: -1, Limit: 5}, 5, 0},
		{"huge page clamped", store.AnnouncementFilter{Page: math.MaxInt, Limit: 20}, 20, (store.MaxPage - 1) * 20},
		{"huge page with max limit", store.AnnouncementFilter{Page: math.MaxInt, Limit: math.MaxInt}, 100, (store.MaxPage - 1) * 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := tt.filter.Normalize()
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
