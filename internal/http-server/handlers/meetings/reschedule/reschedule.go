package reschedule

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

type MeetingRescheduler interface {
	RescheduleMeeting(ctx context.Context, req *api.RescheduleRequest) (*api.MeetingResponse, error)
}

type Request struct {
	api.RescheduleRequest
}

type Response struct {
	response.Response
	Meeting *api.MeetingResponse `json:"meeting,omitempty"`
}

func New(log *slog.Logger, rescheduler MeetingRescheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.meetings.reschedule.New"

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

		if req.MeetingID == "" {
			log.Error("meeting_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "meeting_id is required"))
			return
		}

		meeting, err := rescheduler.RescheduleMeeting(r.Context(), &req.RescheduleRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid reschedule request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid date or time format"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("meeting not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "meeting not found"))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("owner is locked by another booking")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "another booking is in progress, try again"))
			return
		}

		if errors.Is(err, response.ErrOutsideAvailability) {
			log.Error("target outside availability")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.OUTSIDE_AVAILABILITY), "requested time does not fit any availability window"))
			return
		}

		if errors.Is(err, response.ErrSlotAlreadyBooked) {
			log.Error("target slot already booked")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.SLOT_ALREADY_BOOKED), "requested slot is already booked"))
			return
		}

		if err != nil {
			log.Error("Failed to reschedule meeting", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to reschedule meeting"))
			return
		}

		log.Info("Meeting rescheduled", slog.String("meeting_id", req.MeetingID))

		render.JSON(w, r, Response{Meeting: meeting})
	}
}
