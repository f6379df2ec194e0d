package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jgivc/darkhammer/internal/entity"
	"github.com/jgivc/darkhammer/internal/query"
)

type windowResponse struct {
	DateRange       entity.DateRange       `json:"dateRange"`
	CustomDateRange entity.CustomDateRange `json:"customDateRange"`
	Window          query.Window           `json:"window"`
	DayCount        *int                   `json:"dayCount"`
}

func toWindow(snap entity.Snapshot, now time.Time) windowResponse {
	res := windowResponse{
		DateRange:       snap.DateRange,
		CustomDateRange: snap.CustomDateRange,
		Window:          query.ResolveWindow(snap.DateRange, snap.CustomDateRange, now),
	}

	if n, ok := query.DayCount(snap.CustomDateRange); ok {
		res.DayCount = &n
	}

	return res
}

func NewWindowHandler(store StateStore, now func() time.Time, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toWindow(store.Snapshot(), now()))
	}
}

func NewDateRangeHandler(store StateStore, now func() time.Time, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DateRangeHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DateRange string `json:"dateRange"`
		}
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		dr, err := entity.ParseDateRange(req.DateRange)
		if err != nil {
			writeError(w, log, badRequest("%s", err))

			return
		}

		store.SetDateRange(dr)
		writeJSON(w, http.StatusOK, toWindow(store.Snapshot(), now()))
	}
}

func NewCustomRangeHandler(store StateStore, now func() time.Time, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CustomRangeHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var cr entity.CustomDateRange
		if err := readJSON(r, &cr); err != nil {
			writeError(w, log, err)

			return
		}

		if cr.StartDate == nil && cr.EndDate != nil {
			writeError(w, log, badRequest("end date without start date"))

			return
		}
		if cr.Complete() && cr.EndDate.Before(*cr.StartDate) {
			writeError(w, log, badRequest("end date is before start date"))

			return
		}

		store.SetCustomDateRange(cr)
		writeJSON(w, http.StatusOK, toWindow(store.Snapshot(), now()))
	}
}

// NewPickDateHandler feeds one date picker click into the custom range.
func NewPickDateHandler(store StateStore, now func() time.Time, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "PickDateHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Date *time.Time `json:"date"`
		}
		if err := readJSON(r, &req); err != nil {
			writeError(w, log, err)

			return
		}

		if req.Date == nil {
			writeError(w, log, badRequest("date is required"))

			return
		}

		store.PickCustomDate(*req.Date)
		writeJSON(w, http.StatusOK, toWindow(store.Snapshot(), now()))
	}
}
