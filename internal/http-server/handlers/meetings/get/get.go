package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"calendar-service/api"
	"calendar-service/pkg/response"
	"calendar-service/pkg/sl"
)

type MeetingGetter interface {
	GetMeeting(ctx context.Context, id string) (*api.MeetingResponse, error)
	ListMeetings(ctx context.Context, ownerID string, from, to *time.Time) ([]*api.MeetingResponse, error)
}

type Response struct {
	response.Response
	Meetings []api.MeetingResponse `json:"meetings,omitempty"`
	Meeting  *api.MeetingResponse  `json:"meeting,omitempty"`
}

func New(log *slog.Logger, getter MeetingGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.meetings.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		if id := chi.URLParam(r, "id"); id != "" {
			meeting, err := getter.GetMeeting(r.Context(), id)

			if errors.Is(err, response.ErrNotFound) {
				log.Error("meeting not found")
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(string(response.NOT_FOUND), "meeting not found"))
				return
			}

			if err != nil {
				log.Error("Failed to get meeting", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get meeting"))
				return
			}

			render.JSON(w, r, Response{Meeting: meeting})
			return
		}

		ownerID := r.URL.Query().Get("owner_id")
		if ownerID == "" {
			log.Error("owner_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "owner_id is required"))
			return
		}

		var from, to *time.Time

		if fromStr := r.URL.Query().Get("from"); fromStr != "" {
			t, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				log.Error("invalid from date")
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid from format, use YYYY-MM-DD"))
				return
			}
			from = &t
		}

		if toStr := r.URL.Query().Get("to"); toStr != "" {
			t, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				log.Error("invalid to date")
				w.WriteHeader(http.StatusBadRequest)
				render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid to format, use YYYY-MM-DD"))
				return
			}
			to = &t
		}

		meetings, err := getter.ListMeetings(r.Context(), ownerID, from, to)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("user not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "user not found"))
			return
		}

		if err != nil {
			log.Error("Failed to list meetings", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list meetings"))
			return
		}

		log.Info("Meetings retrieved", slog.Int("count", len(meetings)))

		result := make([]api.MeetingResponse, len(meetings))
		for i, m := range meetings {
			result[i] = *m
		}

		render.JSON(w, r, Response{Meetings: result})
	}
}
