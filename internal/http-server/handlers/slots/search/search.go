package search

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"calendar-service/api"
	"calendar-service/pkg/response"
	"calendar-service/pkg/sl"
)

type SlotSearcher interface {
	QuerySlots(ctx context.Context, ownerID, date string) (*api.AvailableSlotsResponse, error)
}

type Response struct {
	response.Response
	*api.AvailableSlotsResponse
}

func New(log *slog.Logger, searcher SlotSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.slots.search.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ownerID := chi.URLParam(r, "user_id")
		if ownerID == "" {
			log.Error("user_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "user_id is required"))
			return
		}

		date := r.URL.Query().Get("date")
		if date == "" {
			log.Error("date is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "date is required (YYYY-MM-DD)"))
			return
		}

		slots, err := searcher.QuerySlots(r.Context(), ownerID, date)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid date format")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid date format, use YYYY-MM-DD"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("user not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "user not found"))
			return
		}

		if err != nil {
			log.Error("Failed to search slots", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to search slots"))
			return
		}

		log.Info("Slots retrieved",
			slog.String("owner_id", ownerID),
			slog.String("date", date),
			slog.Int("count", len(slots.AvailableSlots)),
		)

		render.JSON(w, r, Response{AvailableSlotsResponse: slots})
	}
}
