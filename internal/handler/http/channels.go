package httphandler

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jgivc/darkhammer/internal/common"
	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/jgivc/darkhammer/internal/query"
)

const manualChannelPrefix = "manual-"

type channelsResponse struct {
	Channels  []entity.Channel `json:"channels"`
	Connected []entity.Channel `json:"connected"`
}

func NewChannelsHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()
		writeJSON(w, http.StatusOK, channelsResponse{
			Channels:  snap.Channels,
			Connected: query.ConnectedChannels(snap.Channels),
		})
	}
}

// NewAddChannelHandler adds a channel entered in the connect wizard. Channels without an id get a generated one.
func NewAddChannelHandler(store StateStore, newID func() string, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "AddChannelHandler"))
	if newID == nil {
		newID = uuid.NewString
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID          string `json:"id"`
			Title       string `json:"title"`
			Thumbnail   string `json:"thumbnail"`
			IsConnected *bool  `json:"isConnected"`
		}
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		channel := entity.Channel{
			ID:          strings.TrimSpace(req.ID),
			Title:       strings.TrimSpace(req.Title),
			Thumbnail:   req.Thumbnail,
			IsConnected: true,
		}
		if channel.Title == "" {
			writeError(w, log, badRequest("channel title is required"))

			return
		}
		if channel.ID == "" {
			channel.ID = manualChannelPrefix + newID()
		}
		if req.IsConnected != nil {
			channel.IsConnected = *req.IsConnected
		}

		store.AddChannel(channel)
		log.Info("Channel added", slog.String("id", channel.ID), slog.String("title", channel.Title))

		writeJSON(w, http.StatusCreated, channel)
	}
}

// NewConnectChannelHandler adds a channel picked from the fetched channel list.
func NewConnectChannelHandler(store StateStore, data DataService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ConnectChannelHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		channels, err := data.Channels(r.Context())
		if err != nil {
			writeError(w, log, err)

			return
		}

		i := slices.IndexFunc(channels, func(c entity.Channel) bool { return c.ID == id })
		if i < 0 {
			writeError(w, log, common.ErrChannelNotFoundError)

			return
		}

		channel := channels[i]
		channel.IsConnected = true
		store.AddChannel(channel)
		log.Info("Channel connected", slog.String("id", channel.ID))

		writeJSON(w, http.StatusCreated, channel)
	}
}

func NewRemoveChannelHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "RemoveChannelHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if !hasChannel(store.Snapshot(), id) {
			writeError(w, log, common.ErrChannelNotFoundError)

			return
		}

		store.RemoveChannel(id)
		log.Info("Channel removed", slog.String("id", id))

		w.WriteHeader(http.StatusNoContent)
	}
}

func NewToggleChannelHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ToggleChannelHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if !hasChannel(store.Snapshot(), id) {
			writeError(w, log, common.ErrChannelNotFoundError)

			return
		}

		store.ToggleChannelConnection(id)

		snap := store.Snapshot()
		i := slices.IndexFunc(snap.Channels, func(c entity.Channel) bool { return c.ID == id })
		if i < 0 {
			writeError(w, log, common.ErrChannelNotFoundError)

			return
		}

		writeJSON(w, http.StatusOK, snap.Channels[i])
	}
}

func NewActiveChannelHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()
		writeJSON(w, http.StatusOK, query.ActiveChannel(snap.SelectedChannelID, snap.Channels))
	}
}

// NewSelectedChannelHandler sets the channel filter. A null channelId selects all channels.
// Unknown ids are stored as is and resolve to "all" on read.
func NewSelectedChannelHandler(store StateStore, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "SelectedChannelHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ChannelID *string `json:"channelId"`
		}
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		store.SetSelectedChannelID(req.ChannelID)

		snap := store.Snapshot()
		writeJSON(w, http.StatusOK, query.ActiveChannel(snap.SelectedChannelID, snap.Channels))
	}
}

type selectionResponse struct {
	IDs               []string `json:"ids"`
	SelectedChannelID *string  `json:"selectedChannelId"`
}

// NewSelectionToggleHandler toggles id in the multi-select set and reconciles the single channel filter.
func NewSelectionToggleHandler(store StateStore, sel *query.Selection, log *slog.Logger) http.HandlerFunc {
	var mu sync.Mutex

	return func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		sel.ToggleAndReconcile(r.PathValue("id"), store)

		writeJSON(w, http.StatusOK, selectionResponse{
			IDs:               sel.IDs(),
			SelectedChannelID: store.Snapshot().SelectedChannelID,
		})
	}
}

func hasChannel(snap entity.Snapshot, id string) bool {
	return slices.ContainsFunc(snap.Channels, func(c entity.Channel) bool { return c.ID == id })
}
