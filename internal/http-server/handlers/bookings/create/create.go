package create

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

type SlotBooker interface {
	BookSlot(ctx context.Context, req *api.BookingRequest) (*api.MeetingResponse, error)
}

type Request struct {
	api.BookingRequest
}

type Response struct {
	response.Response
	Meeting *api.MeetingResponse `json:"meeting,omitempty"`
}

func New(log *slog.Logger, booker SlotBooker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.create.New"

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

		if req.CalendarOwner == "" {
			log.Error("calendar_owner is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "calendar_owner is required"))
			return
		}

		if req.Token == "" {
			log.Error("token is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "token is required"))
			return
		}

		meeting, err := booker.BookSlot(r.Context(), &req.BookingRequest)

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid booking request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid date or time format"))
			return
		}

		if errors.Is(err, response.ErrLocked) {
			log.Error("owner is locked by another booking")
			w.WriteHeader(http.StatusLocked)
			render.JSON(w, r, response.Error(string(response.LOCKED), "another booking is in progress, try again"))
			return
		}

		if errors.Is(err, response.ErrInvalidToken) {
			log.Error("invalid or expired token")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.INVALID_TOKEN), "invalid or expired token, search for available slots again"))
			return
		}

		if errors.Is(err, response.ErrTokenMismatch) {
			log.Error("token mismatch")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.TOKEN_MISMATCH), "token does not match the requested owner or date"))
			return
		}

		if errors.Is(err, response.ErrSlotNotOffered) {
			log.Error("slot was not offered")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.SLOT_NOT_OFFERED), "requested slot was not among the offered slots"))
			return
		}

		if errors.Is(err, response.ErrOutsideAvailability) {
			log.Error("slot outside availability")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.OUTSIDE_AVAILABILITY), "requested time does not fit any availability window"))
			return
		}

		if errors.Is(err, response.ErrSlotAlreadyBooked) {
			log.Error("slot already booked")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.SLOT_ALREADY_BOOKED), "requested slot is already booked"))
			return
		}

		if err != nil {
			log.Error("Failed to book slot", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to book slot"))
			return
		}

		log.Info("Slot booked", slog.String("meeting_id", meeting.ID))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{Meeting: meeting})
	}
}
