package api

type UserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Timezone string `json:"timezone"`
}

type AvailabilityEntry struct {
	DayOfWeek    *int    `json:"day_of_week,omitempty"`
	SpecificDate *string `json:"specific_date,omitempty"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
}

type SetAvailabilityRequest struct {
	UserID         string              `json:"user_id"`
	Availabilities []AvailabilityEntry `json:"availabilities"`
}

type SlotResponse struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type AvailableSlotsResponse struct {
	Token          string         `json:"token"`
	AvailableSlots []SlotResponse `json:"available_slots"`
}

type BookingRequest struct {
	CalendarOwner string `json:"calendar_owner"`
	Token         string `json:"token"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	InviteeName   string `json:"invitee_name"`
	InviteeEmail  string `json:"invitee_email"`
}

type MeetingResponse struct {
	ID            string `json:"id"`
	CalendarOwner string `json:"calendar_owner"`
	InviteeName   string `json:"invitee_name"`
	InviteeEmail  string `json:"invitee_email"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
}

type RescheduleRequest struct {
	MeetingID string `json:"meeting_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}
