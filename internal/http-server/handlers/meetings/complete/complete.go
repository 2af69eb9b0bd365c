package complete

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

type MeetingCompleter interface {
	CompleteMeeting(ctx context.Context, id string) (*api.MeetingResponse, error)
}

type Response struct {
	response.Response
	Meeting *api.MeetingResponse `json:"meeting,omitempty"`
}

func New(log *slog.Logger, completer MeetingCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.meetings.complete.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		meeting, err := completer.CompleteMeeting(r.Context(), id)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("meeting not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "meeting not found"))
			return
		}

		if err != nil {
			log.Error("Failed to complete meeting", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to complete meeting"))
			return
		}

		log.Info("Meeting completed", slog.String("meeting_id", id))

		render.JSON(w, r, Response{Meeting: meeting})
	}
}
