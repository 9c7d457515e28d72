package tenant

import (
	"context"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/unionhome/pkg/models"
)

type contextKey struct{}

// WithUnion attaches the resolved union to ctx.
func WithUnion(ctx context.Context, u *models.Union) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the union placed in ctx by the gateway, if any.
func FromContext(ctx context.Context) (*models.Union, bool) {
	u, ok := ctx.Value(contextKey{}).(*models.Union)
	return u, ok && u != nil
}

// IDFromContext returns just the union ID.
func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	u, ok := FromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return u.ID, true
}
