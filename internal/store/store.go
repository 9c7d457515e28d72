package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/unionhome/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	GetUnionBySlug(ctx context.Context, slug string) (*models.Union, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error

	CreateAnnouncement(ctx context.Context, a *models.Announcement) error
	ListAnnouncements(ctx context.Context, filter AnnouncementFilter) ([]*models.Announcement, int, error)
	GetAnnouncement(ctx context.Context, id uuid.UUID, unionID uuid.UUID) (*models.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uuid.UUID, unionID uuid.UUID) error
}

// AnnouncementFilter scopes a board listing to one union.
type AnnouncementFilter struct {
	UnionID uuid.UUID
	Page    int
	Limit   int
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	// MaxPage bounds the page number so the OFFSET never overflows.
	MaxPage = 1_000_000
)

// Normalize clamps pagination to sane bounds and returns limit and offset.
func (f AnnouncementFilter) Normalize() (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	return limit, (page - 1) * limit
}
