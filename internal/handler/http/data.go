package httphandler

import (
	"log/slog"
	"net/http"
)

// Data handlers read the channel and date filters from the store, a channelId query parameter overrides the channel.

func channelFilter(r *http.Request, store StateStore) *string {
	if id := optionalString(r, "channelId"); id != nil {
		if *id == "" {
			return nil
		}

		return id
	}

	return store.Snapshot().SelectedChannelID
}

func NewDataChannelsHandler(data DataService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DataChannelsHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		channels, err := data.Channels(r.Context())
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusOK, channels)
	}
}

func NewAnalyticsHandler(store StateStore, data DataService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "AnalyticsHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()

		a, err := data.Analytics(r.Context(), channelFilter(r, store), snap.DateRange, snap.CustomDateRange)
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusOK, a)
	}
}

func NewUploadsHandler(store StateStore, data DataService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "UploadsHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		uploads, err := data.Uploads(r.Context(), channelFilter(r, store))
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusOK, uploads)
	}
}

func NewCommentsHandler(store StateStore, data DataService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CommentsHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		comments, err := data.Comments(r.Context(), channelFilter(r, store))
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusOK, comments)
	}
}

func NewDashboardHandler(store StateStore, data DataService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DashboardHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		snap := store.Snapshot()

		d, err := data.Dashboard(r.Context(), channelFilter(r, store), snap.DateRange, snap.CustomDateRange)
		if err != nil {
			writeError(w, log, err)

			return
		}

		writeJSON(w, http.StatusOK, d)
	}
}
