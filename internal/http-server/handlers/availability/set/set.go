package set

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"calendar-service/api"
	"calendar-service/pkg/response"
	"calendar-service/pkg/sl"
)

type AvailabilitySetter interface {
	SetAvailability(ctx context.Context, req *api.SetAvailabilityRequest) error
}

type Request struct {
	api.SetAvailabilityRequest
}

type Response struct {
	response.Response
	Message string `json:"message,omitempty"`
}

func New(log *slog.Logger, setter AvailabilitySetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.availability.set.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if req.UserID == "" {
			log.Error("user_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "user_id is required"))
			return
		}

		if len(req.Availabilities) == 0 {
			log.Error("availabilities is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "availabilities is required"))
			return
		}

		err := setter.SetAvailability(r.Context(), &req.SetAvailabilityRequest)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("user not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "user not found"))
			return
		}

		if errors.Is(err, response.ErrInvalidWindowSpec) {
			log.Error("invalid window spec", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.INVALID_WINDOW_SPEC), err.Error()))
			return
		}

		if err != nil {
			log.Error("Failed to set availability", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to set availability"))
			return
		}

		log.Info("Availability set", slog.String("user_id", req.UserID), slog.Int("entries", len(req.Availabilities)))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Message: "Availability set successfully"})
	}
}
