package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jgivc/darkhammer/internal/query"
)

type Deps struct {
	Store     StateStore
	Templates TemplateService
	Data      DataService
	Now       func() time.Time
	NewID     func() string
}

// NewRouter registers the API. Only the session and login routes bypass the auth gate.
func NewRouter(d Deps, log *slog.Logger) *http.ServeMux {
	if d.Now == nil {
		d.Now = time.Now
	}

	mux := http.NewServeMux()
	gate := NewAuthGate(d.Store, log)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, gate(h))
	}

	mux.Handle("GET /api/session", NewSessionHandler(d.Store, log))
	mux.Handle("POST /api/login", NewLoginHandler(d.Store, log))

	handle("POST /api/logout", NewLogoutHandler(d.Store, log))
	handle("GET /api/state", NewStateHandler(d.Store, log))
	handle("PUT /api/theme", NewThemeHandler(d.Store, log))
	handle("POST /api/sidebar/toggle", NewSidebarHandler(d.Store, log))
	handle("PUT /api/user", NewUserNameHandler(d.Store, log))
	handle("PUT /api/youtube-key", NewAPIKeyHandler(d.Store, log))

	handle("GET /api/channels", NewChannelsHandler(d.Store, log))
	handle("POST /api/channels", NewAddChannelHandler(d.Store, d.NewID, log))
	handle("POST /api/channels/{id}/connect", NewConnectChannelHandler(d.Store, d.Data, log))
	handle("POST /api/channels/{id}/toggle", NewToggleChannelHandler(d.Store, log))
	handle("DELETE /api/channels/{id}", NewRemoveChannelHandler(d.Store, log))
	handle("GET /api/channels/active", NewActiveChannelHandler(d.Store, log))
	handle("PUT /api/channels/selected", NewSelectedChannelHandler(d.Store, log))
	handle("POST /api/selection/{id}/toggle", NewSelectionToggleHandler(d.Store, query.NewSelection(), log))

	handle("GET /api/window", NewWindowHandler(d.Store, d.Now, log))
	handle("PUT /api/date-range", NewDateRangeHandler(d.Store, d.Now, log))
	handle("PUT /api/custom-range", NewCustomRangeHandler(d.Store, d.Now, log))
	handle("POST /api/custom-range/pick", NewPickDateHandler(d.Store, d.Now, log))

	handle("GET /api/templates", NewTemplatesHandler(d.Templates, log))
	handle("POST /api/templates", NewSaveTemplateHandler(d.Templates, log))
	handle("POST /api/templates/import", NewImportTemplatesHandler(d.Templates, log))
	handle("POST /api/templates/preview", NewPreviewHandler(d.Templates, log))
	handle("GET /api/templates/{id}", NewTemplateHandler(d.Templates, log))
	handle("PATCH /api/templates/{id}", NewUpdateTemplateHandler(d.Templates, log))
	handle("DELETE /api/templates/{id}", NewRemoveTemplateHandler(d.Templates, log))
	handle("POST /api/templates/{id}/apply", NewApplyTemplateHandler(d.Templates, log))

	handle("GET /api/data/channels", NewDataChannelsHandler(d.Data, log))
	handle("GET /api/data/analytics", NewAnalyticsHandler(d.Store, d.Data, log))
	handle("GET /api/data/uploads", NewUploadsHandler(d.Store, d.Data, log))
	handle("GET /api/data/comments", NewCommentsHandler(d.Store, d.Data, log))
	handle("GET /api/data/dashboard", NewDashboardHandler(d.Store, d.Data, log))

	return mux
}
