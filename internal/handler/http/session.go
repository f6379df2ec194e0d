package httphandler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/jgivc/darkhammer/internal/entity"
)

type sessionResponse struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	UserName        string `json:"userName"`
}

func toSession(snap entity.Snapshot) sessionResponse {
	return sessionResponse{
		IsAuthenticated: snap.IsAuthenticated,
		UserName:        snap.UserName,
	}
}

func NewSessionHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toSession(store.Snapshot()))
	}
}

func NewLoginHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "LoginHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserName string `json:"userName"`
		}
		if r.ContentLength != 0 {
			if err := readJSON(r, &req); err != nil {
				writeError(w, log, err)

				return
			}
		}

		store.Login(strings.TrimSpace(req.UserName))
		log.Info("Logged in", slog.String("user", store.Snapshot().UserName))

		writeJSON(w, http.StatusOK, toSession(store.Snapshot()))
	}
}

func NewLogoutHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "LogoutHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		store.Logout()
		log.Info("Logged out")

		writeJSON(w, http.StatusOK, toSession(store.Snapshot()))
	}
}

func NewStateHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Snapshot())
	}
}

func NewThemeHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ThemeHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Theme entity.Theme `json:"theme"`
		}
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		if !req.Theme.Valid() {
			writeError(w, log, badRequest("unknown theme %q", req.Theme))

			return
		}

		store.SetTheme(req.Theme)
		writeJSON(w, http.StatusOK, store.Snapshot())
	}
}

func NewSidebarHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store.ToggleSidebar()
		writeJSON(w, http.StatusOK, map[string]bool{"sidebarCollapsed": store.Snapshot().SidebarCollapsed})
	}
}

func NewUserNameHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "UserNameHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserName string `json:"userName"`
		}
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		name := strings.TrimSpace(req.UserName)
		if name == "" {
			writeError(w, log, badRequest("user name is required"))

			return
		}

		store.SetUserName(name)
		writeJSON(w, http.StatusOK, toSession(store.Snapshot()))
	}
}

// NewAPIKeyHandler stores the YouTube API key. An empty or null key clears it.
func NewAPIKeyHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "APIKeyHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			APIKey *string `json:"youtubeApiKey"`
		}
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		if req.APIKey != nil && strings.TrimSpace(*req.APIKey) == "" {
			req.APIKey = nil
		}

		store.SetYouTubeAPIKey(req.APIKey)
		log.Info("API key changed", slog.Bool("set", req.APIKey != nil))

		writeJSON(w, http.StatusOK, map[string]bool{"hasYoutubeApiKey": req.APIKey != nil})
	}
}
