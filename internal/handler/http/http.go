package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/jgivc/darkhammer/internal/service/template"
)

const maxBodySize = 1 << 20

type StateStore interface {
	Snapshot() entity.Snapshot
	Login(userName string)
	Logout()
	SetTheme(theme entity.Theme)
	ToggleSidebar()
	SetUserName(name string)
	SetYouTubeAPIKey(key *string)
	AddChannel(channel entity.Channel)
	RemoveChannel(id string)
	ToggleChannelConnection(id string)
	SetSelectedChannelID(id *string)
	SetDateRange(dr entity.DateRange)
	SetCustomDateRange(cr entity.CustomDateRange)
	PickCustomDate(t time.Time) entity.CustomDateRange
}

type TemplateService interface {
	List(channelID *string) []entity.UploadTemplate
	Get(id string) (entity.UploadTemplate, error)
	Save(form entity.UploadForm, name string, channelID *string) (entity.UploadTemplate, error)
	Update(id string, patch entity.TemplatePatch) (entity.UploadTemplate, error)
	Remove(id string) error
	Apply(id string, draft entity.UploadForm) (entity.UploadForm, error)
	Import(ctx context.Context) (template.ImportResult, error)
	Preview(description string) (*entity.DescriptionPreview, error)
}

type DataService interface {
	Channels(ctx context.Context) ([]entity.Channel, error)
	Analytics(ctx context.Context, channelID *string, dr entity.DateRange, custom entity.CustomDateRange) (entity.Analytics, error)
	Uploads(ctx context.Context, channelID *string) ([]entity.Upload, error)
	Comments(ctx context.Context, channelID *string) ([]entity.Comment, error)
	Dashboard(ctx context.Context, channelID *string, dr entity.DateRange, custom entity.CustomDateRange) (*entity.Dashboard, error)
}

// NewAuthGate rejects every request while the session is logged out.
func NewAuthGate(store StateStore, log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(slog.String("handler", "AuthGate"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.Snapshot().IsAuthenticated {
				log.Debug("Rejected", slog.String("path", r.URL.Path))
				writeJSONError(w, http.StatusUnauthorized, "Not authenticated")

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", common.ErrBadRequestError, err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("Cannot encode response", slog.Any("error", err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrBadRequestError), errors.Is(err, common.ErrTemplateNameRequiredError):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrTemplateNotFoundError),
		errors.Is(err, common.ErrChannelNotFoundError),
		errors.Is(err, common.ErrNoTemplatesFoundError):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrImportProcessHasAlreadyStarted):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSONError(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		log.Error("Request failed", slog.Any("error", err))
		writeJSONError(w, http.StatusInternalServerError, "Internal error")
	}
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrBadRequestError, fmt.Sprintf(format, args...))
}

func optionalString(r *http.Request, name string) *string {
	if !r.URL.Query().Has(name) {
		return nil
	}

	v := r.URL.Query().Get(name)

	return &v
}
