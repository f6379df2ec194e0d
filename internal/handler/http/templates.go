package httphandler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jgivc/darkhammer/internal/entity"
)

func NewTemplatesHandler(srv TemplateService, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, srv.List(optionalString(r, "channelId")))
	}
}

func NewTemplateHandler(srv TemplateService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "TemplateHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		tmpl, err := srv.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusOK, tmpl)
	}
}

// NewSaveTemplateHandler saves the current upload form as a named template.
func NewSaveTemplateHandler(srv TemplateService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "SaveTemplateHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name      string            `json:"name"`
			ChannelID *string           `json:"channelId"`
			Form      entity.UploadForm `json:"form"`
		}
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		tmpl, err := srv.Save(req.Form, req.Name, req.ChannelID)
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusCreated, tmpl)
	}
}

// patchRequest tells an explicit null apart from an absent field for the nullable template fields.
type patchRequest struct {
	ChannelID     json.RawMessage    `json:"channelId"`
	Name          *string            `json:"name"`
	Title         *string            `json:"title"`
	Description   *string            `json:"description"`
	Tags          *[]string          `json:"tags"`
	Visibility    *entity.Visibility `json:"visibility"`
	ScheduledDate json.RawMessage    `json:"scheduledDate"`
}

func (p patchRequest) toPatch() (entity.TemplatePatch, error) {
	patch := entity.TemplatePatch{
		Name:        p.Name,
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		Visibility:  p.Visibility,
	}

	if p.ChannelID != nil {
		var id *string
		if err := decodeNullable(p.ChannelID, &id); err != nil {
			return patch, badRequest("channelId: %s", err)
		}
		patch.ChannelID = &id
	}

	if p.ScheduledDate != nil {
		var t *time.Time
		if err := decodeNullable(p.ScheduledDate, &t); err != nil {
			return patch, badRequest("scheduledDate: %s", err)
		}
		patch.ScheduledDate = &t
	}

	return patch, nil
}

func decodeNullable(raw json.RawMessage, v any) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}

	return json.Unmarshal(raw, v)
}

func NewUpdateTemplateHandler(srv TemplateService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "UpdateTemplateHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req patchRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		patch, err := req.toPatch()
		if err != nil {
			writeError(w, log, err)

			return
		}

		tmpl, err := srv.Update(r.PathValue("id"), patch)
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusOK, tmpl)
	}
}

func NewRemoveTemplateHandler(srv TemplateService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "RemoveTemplateHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		if err := srv.Remove(r.PathValue("id")); err != nil {
			writeError(w, log, err)

			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// NewApplyTemplateHandler returns the draft form overwritten with the template fields.
func NewApplyTemplateHandler(srv TemplateService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ApplyTemplateHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var draft entity.UploadForm
		if r.ContentLength != 0 {
			if err := readJSON(r, &draft); err != nil {
				writeError(w, log, err)

				return
			}
		}

		form, err := srv.Apply(r.PathValue("id"), draft)
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusOK, form)
	}
}

func NewImportTemplatesHandler(srv TemplateService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ImportTemplatesHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		res, err := srv.Import(r.Context())
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func NewPreviewHandler(srv TemplateService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "PreviewHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Description string `json:"description"`
		}
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		preview, err := srv.Preview(req.Description)
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusOK, preview)
	}
}
