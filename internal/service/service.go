package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"calendar-service/api"
	"calendar-service/internal/lock"
	"calendar-service/internal/models"
	"calendar-service/pkg/response"
)

const (
	dateLayout   = "2006-01-02"
	ownerLockTTL = 10 * time.Second
)

type Service struct {
	store  Store
	cache  Cache
	locker lock.Locker
}

func NewService(store Store, cache Cache, locker lock.Locker) *Service {
	return &Service{store: store, cache: cache, locker: locker}
}

type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)

	// Availability Windows
	GetWindowsByDate(ctx context.Context, ownerID string, date time.Time) ([]*models.AvailabilityWindow, error)
	GetWindowsByWeekday(ctx context.Context, ownerID string, dayOfWeek int) ([]*models.AvailabilityWindow, error)
	ReplaceWindows(ctx context.Context, ownerID string, windows []*models.AvailabilityWindow) error

	// Commitments
	ListOccupying(ctx context.Context, ownerID string, date time.Time) ([]*models.Commitment, error)
	HasOverlapping(ctx context.Context, ownerID string, date time.Time, start, end models.ClockTime, excludeID string) (bool, error)
	CreateCommitment(ctx context.Context, c *models.Commitment) error
	GetCommitment(ctx context.Context, id string) (*models.Commitment, error)
	ListCommitments(ctx context.Context, ownerID string, from, to *time.Time) ([]*models.Commitment, error)
	UpdateCommitmentStatus(ctx context.Context, id string, status models.CommitmentStatus) error
	RescheduleCommitment(ctx context.Context, id string, date time.Time, start, end models.ClockTime) error
}

// Cache is the reservation cache contract. Misses are reported via the bool,
// never as errors; entries expire on their own after the cache TTL.
type Cache interface {
	GetSlots(ctx context.Context, ownerID, date string) (*models.SlotOffer, bool, error)
	SetSlots(ctx context.Context, offer *models.SlotOffer) error
	IssueToken(ctx context.Context, offer *models.SlotOffer) (string, error)
	GetToken(ctx context.Context, token string) (*models.SlotOffer, bool, error)
	InvalidateOwner(ctx context.Context, ownerID string) error
	InvalidateDate(ctx context.Context, ownerID, date string) error
	InvalidateToken(ctx context.Context, ownerID, token string) error
}

// Users

func (s *Service) CreateUser(ctx context.Context, req *api.UserRequest) (*api.UserResponse, error) {
	const op = "service.CreateUser"

	user := &models.User{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Email:    req.Email,
		Timezone: req.Timezone,
	}
	if user.Timezone == "" {
		user.Timezone = "UTC"
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetUser(ctx, user.ID)
}

func (s *Service) GetUser(ctx context.Context, id string) (*api.UserResponse, error) {
	const op = "service.GetUser"

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &api.UserResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Timezone: user.Timezone,
	}, nil
}

// Availability

// SetAvailability replaces, per entry, all prior windows sharing that entry's
// day-of-week or specific date. All entries are validated before anything is
// touched, so an invalid spec leaves prior windows unchanged. The owner's
// cached offers are invalidated before the writes, so no reader can hold a
// stale offer for windows about to change.
func (s *Service) SetAvailability(ctx context.Context, req *api.SetAvailabilityRequest) error {
	const op = "service.SetAvailability"

	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	windows := make([]*models.AvailabilityWindow, 0, len(req.Availabilities))

	for _, entry := range req.Availabilities {
		window, err := windowFromEntry(req.UserID, entry)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		windows = append(windows, window)
	}

	if err := s.cache.InvalidateOwner(ctx, req.UserID); err != nil {
		return fmt.Errorf("%s: invalidate owner: %w", op, err)
	}

	if err := s.store.ReplaceWindows(ctx, req.UserID, windows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func windowFromEntry(ownerID string, entry api.AvailabilityEntry) (*models.AvailabilityWindow, error) {
	start, err := models.ParseClockTime(entry.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid start_time: %w", response.ErrInvalidWindowSpec)
	}

	end, err := models.ParseClockTime(entry.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid end_time: %w", response.ErrInvalidWindowSpec)
	}

	window := &models.AvailabilityWindow{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		DayOfWeek: entry.DayOfWeek,
		Start:     start,
		End:       end,
	}

	if entry.SpecificDate != nil {
		date, err := time.Parse(dateLayout, *entry.SpecificDate)
		if err != nil {
			return nil, fmt.Errorf("invalid specific_date: %w", response.ErrInvalidWindowSpec)
		}
		window.SpecificDate = &date
	}

	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, response.ErrInvalidWindowSpec)
	}

	return window, nil
}

// Slots

// QuerySlots returns the open slots for the owner on the date together with a
// reservation token bound to exactly that slot set. The per-(owner,date) slot
// computation is memoized in the cache; the memo is performance-only, booking
// correctness rests on the re-checks in BookSlot.
func (s *Service) QuerySlots(ctx context.Context, ownerID, dateStr string) (*api.AvailableSlotsResponse, error) {
	const op = "service.QuerySlots"

	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date: %w", op, response.ErrBadRequest)
	}

	if _, err := s.store.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	offer, ok, err := s.cache.GetSlots(ctx, ownerID, dateStr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !ok {
		offer, err = s.buildOffer(ctx, ownerID, date, dateStr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := s.cache.SetSlots(ctx, offer); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	token, err := s.cache.IssueToken(ctx, offer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slots := make([]api.SlotResponse, 0, len(offer.Slots))
	for _, slot := range offer.Slots {
		slots = append(slots, api.SlotResponse{
			StartTime: slot.Start.String(),
			EndTime:   slot.End.String(),
		})
	}

	return &api.AvailableSlotsResponse{
		Token:          token,
		AvailableSlots: slots,
	}, nil
}

func (s *Service) buildOffer(ctx context.Context, ownerID string, date time.Time, dateStr string) (*models.SlotOffer, error) {
	windows, err := s.applicableWindows(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}

	commitments, err := s.store.ListOccupying(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}

	return &models.SlotOffer{
		OwnerID: ownerID,
		Date:    dateStr,
		Slots:   computeSlots(windows, commitments),
	}, nil
}

// applicableWindows selects the windows that govern a date: specific-date
// windows take precedence over recurring ones entirely, they are never merged.
func (s *Service) applicableWindows(ctx context.Context, ownerID string, date time.Time) ([]*models.AvailabilityWindow, error) {
	windows, err := s.store.GetWindowsByDate(ctx, ownerID, date)
	if err != nil {
		return nil, err
	}

	if len(windows) > 0 {
		return windows, nil
	}

	return s.store.GetWindowsByWeekday(ctx, ownerID, models.WeekdayIndex(date))
}

// Bookings

// BookSlot validates the reservation token against the requested booking and
// commits it. The sequence short-circuits on the first failure: token lookup,
// owner/date binding, verbatim slot membership, availability re-check against
// the current windows, then the authoritative overlap re-check against the
// commitment store. The whole pass runs under a per-owner lock so two racing
// bookings for overlapping intervals cannot both reach the insert.
func (s *Service) BookSlot(ctx context.Context, req *api.BookingRequest) (*api.MeetingResponse, error) {
	const op = "service.BookSlot"

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date: %w", op, response.ErrBadRequest)
	}

	start, err := models.ParseClockTime(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid start_time: %w", op, response.ErrBadRequest)
	}

	end, err := models.ParseClockTime(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid end_time: %w", op, response.ErrBadRequest)
	}

	lockKey := fmt.Sprintf("owner:%s", req.CalendarOwner)

	locked, err := s.locker.Lock(ctx, lockKey, ownerLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	offer, ok, err := s.cache.GetToken(ctx, req.Token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, response.ErrInvalidToken)
	}

	if offer.OwnerID != req.CalendarOwner || offer.Date != req.Date {
		return nil, fmt.Errorf("%s: %w", op, response.ErrTokenMismatch)
	}

	if !offer.Contains(start, end) {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotOffered)
	}

	fits, err := s.fitsAvailability(ctx, req.CalendarOwner, date, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !fits {
		return nil, fmt.Errorf("%s: %w", op, response.ErrOutsideAvailability)
	}

	overlapping, err := s.store.HasOverlapping(ctx, req.CalendarOwner, date, start, end, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if overlapping {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotAlreadyBooked)
	}

	meeting := &models.Commitment{
		ID:           uuid.NewString(),
		OwnerID:      req.CalendarOwner,
		InviteeName:  req.InviteeName,
		InviteeEmail: req.InviteeEmail,
		Date:         date,
		Start:        start,
		End:          end,
		Status:       models.StatusBooked,
	}

	if err := s.store.CreateCommitment(ctx, meeting); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// The slot set for this date is now stale and the token is spent.
	if err := s.cache.InvalidateDate(ctx, req.CalendarOwner, req.Date); err != nil {
		return nil, fmt.Errorf("%s: invalidate date: %w", op, err)
	}
	if err := s.cache.InvalidateToken(ctx, req.CalendarOwner, req.Token); err != nil {
		return nil, fmt.Errorf("%s: invalidate token: %w", op, err)
	}

	return meetingResponse(meeting), nil
}

// fitsAvailability reports whether [start,end) fits entirely inside one of the
// windows governing the date, with the same specific-date precedence used for
// slot generation. Guards against availability edited between offer and booking.
func (s *Service) fitsAvailability(ctx context.Context, ownerID string, date time.Time, start, end models.ClockTime) (bool, error) {
	windows, err := s.applicableWindows(ctx, ownerID, date)
	if err != nil {
		return false, err
	}

	for _, window := range windows {
		if window.Start <= start && window.End >= end {
			return true, nil
		}
	}

	return false, nil
}

func (s *Service) GetMeeting(ctx context.Context, id string) (*api.MeetingResponse, error) {
	const op = "service.GetMeeting"

	meeting, err := s.store.GetCommitment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return meetingResponse(meeting), nil
}

// ListMeetings returns the owner's meetings excluding cancelled ones.
func (s *Service) ListMeetings(ctx context.Context, ownerID string, from, to *time.Time) ([]*api.MeetingResponse, error) {
	const op = "service.ListMeetings"

	if _, err := s.store.GetUser(ctx, ownerID); err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	meetings, err := s.store.ListCommitments(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.MeetingResponse, 0, len(meetings))
	for _, meeting := range meetings {
		result = append(result, meetingResponse(meeting))
	}

	return result, nil
}

// CancelMeeting frees the meeting's time, so the cached slot set for its date
// is invalidated.
func (s *Service) CancelMeeting(ctx context.Context, id string) (*api.MeetingResponse, error) {
	return s.transitionMeeting(ctx, "service.CancelMeeting", id, models.StatusCancelled)
}

func (s *Service) CompleteMeeting(ctx context.Context, id string) (*api.MeetingResponse, error) {
	return s.transitionMeeting(ctx, "service.CompleteMeeting", id, models.StatusCompleted)
}

func (s *Service) transitionMeeting(ctx context.Context, op, id string, status models.CommitmentStatus) (*api.MeetingResponse, error) {
	meeting, err := s.store.GetCommitment(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.store.UpdateCommitmentStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.InvalidateDate(ctx, meeting.OwnerID, meeting.Date.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("%s: invalidate date: %w", op, err)
	}

	return s.GetMeeting(ctx, id)
}

// RescheduleMeeting moves a meeting to a new interval after re-running the
// availability and overlap checks for the target, under the owner lock. Both
// the old and the new date's cached slot sets become stale.
func (s *Service) RescheduleMeeting(ctx context.Context, req *api.RescheduleRequest) (*api.MeetingResponse, error) {
	const op = "service.RescheduleMeeting"

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date: %w", op, response.ErrBadRequest)
	}

	start, err := models.ParseClockTime(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid start_time: %w", op, response.ErrBadRequest)
	}

	end, err := models.ParseClockTime(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid end_time: %w", op, response.ErrBadRequest)
	}

	meeting, err := s.store.GetCommitment(ctx, req.MeetingID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lockKey := fmt.Sprintf("owner:%s", meeting.OwnerID)

	locked, err := s.locker.Lock(ctx, lockKey, ownerLockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	fits, err := s.fitsAvailability(ctx, meeting.OwnerID, date, start, end)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !fits {
		return nil, fmt.Errorf("%s: %w", op, response.ErrOutsideAvailability)
	}

	overlapping, err := s.store.HasOverlapping(ctx, meeting.OwnerID, date, start, end, meeting.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if overlapping {
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotAlreadyBooked)
	}

	if err := s.store.RescheduleCommitment(ctx, meeting.ID, date, start, end); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.InvalidateDate(ctx, meeting.OwnerID, meeting.Date.Format(dateLayout)); err != nil {
		return nil, fmt.Errorf("%s: invalidate old date: %w", op, err)
	}
	if err := s.cache.InvalidateDate(ctx, meeting.OwnerID, req.Date); err != nil {
		return nil, fmt.Errorf("%s: invalidate new date: %w", op, err)
	}

	return s.GetMeeting(ctx, meeting.ID)
}

func meetingResponse(meeting *models.Commitment) *api.MeetingResponse {
	return &api.MeetingResponse{
		ID:            meeting.ID,
		CalendarOwner: meeting.OwnerID,
		InviteeName:   meeting.InviteeName,
		InviteeEmail:  meeting.InviteeEmail,
		Date:          meeting.Date.Format(dateLayout),
		StartTime:     meeting.Start.String(),
		EndTime:       meeting.End.String(),
		Status:        string(meeting.Status),
	}
}
