package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST       ErrCode = "REQUEST_FAILED"
	BAD_REQUEST          ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND            ErrCode = "NOT_FOUND"
	LOCKED               ErrCode = "LOCKED"
	CONFLICT             ErrCode = "CONFLICT"
	INVALID_TOKEN        ErrCode = "INVALID_OR_EXPIRED_TOKEN"
	TOKEN_MISMATCH       ErrCode = "TOKEN_MISMATCH"
	SLOT_NOT_OFFERED     ErrCode = "SLOT_NOT_OFFERED"
	OUTSIDE_AVAILABILITY ErrCode = "OUTSIDE_AVAILABILITY"
	SLOT_ALREADY_BOOKED  ErrCode = "SLOT_ALREADY_BOOKED"
	INVALID_WINDOW_SPEC  ErrCode = "INVALID_WINDOW_SPEC"
)

var (
	ErrBadRequest          = errors.New("bad request")
	ErrNotFound            = errors.New("resource not found")
	ErrLocked              = errors.New("resource is locked")
	ErrConflict            = errors.New("conflict")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenMismatch       = errors.New("token does not match the requested owner or date")
	ErrSlotNotOffered      = errors.New("requested slot was not offered")
	ErrOutsideAvailability = errors.New("requested time does not fit any availability window")
	ErrSlotAlreadyBooked   = errors.New("requested slot is already booked")
	ErrInvalidWindowSpec   = errors.New("invalid availability window spec")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}
