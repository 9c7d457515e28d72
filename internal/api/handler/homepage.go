package handler

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/kiranshivaraju/unionhome/internal/api/response"
	"github.com/kiranshivaraju/unionhome/internal/gateway"
	"github.com/kiranshivaraju/unionhome/internal/store"
	"github.com/kiranshivaraju/unionhome/internal/tenant"
	"github.com/kiranshivaraju/unionhome/pkg/models"
)

const homepageAnnouncements = 5

type homepageResponse struct {
	Union         *models.Union          `json:"union"`
	Announcements []*models.Announcement `json:"announcements"`
}

// NewHomepageHandler returns an http.HandlerFunc for GET /{slug} and its
// sub-pages. The union comes from the request context set by the gateway;
// paths the gateway let through unresolved (static assets, reserved
// segments) have no homepage.
func NewHomepageHandler(s AnnouncementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := tenant.FromContext(r.Context())
		if !ok {
			gateway.NotFound(w, r)
			return
		}

		items, _, err := s.ListAnnouncements(r.Context(), store.AnnouncementFilter{
			UnionID: u.ID,
			Limit:   homepageAnnouncements,
		})
		if err != nil {
			slog.Error("homepage announcements failed", "union_id", u.ID, "error", err)
			items = []*models.Announcement{}
		}

		response.JSON(w, homepageResponse{Union: u, Announcements: items})
	}
}

// NewUpstreamProxy returns a handler that forwards tenant pages to the page
// renderer at rawURL, carrying the identity headers of the resolved union.
func NewUpstreamProxy(rawURL string) (http.Handler, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			pr.Out.Header.Del(gateway.HeaderSlug)
			pr.Out.Header.Del(gateway.HeaderID)
			pr.Out.Header.Del(gateway.HeaderName)
			if u, ok := tenant.FromContext(pr.In.Context()); ok {
				gateway.SetIdentityHeaders(pr.Out.Header, u)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("upstream page request failed", "path", r.URL.Path, "error", err)
			response.Error(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Page renderer is unavailable", nil)
		},
	}, nil
}
