package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending    ReservationStatus = "PENDING"
	ReservationConfirmed  ReservationStatus = "CONFIRMED"
	ReservationCheckedIn  ReservationStatus = "CHECKED_IN"
	ReservationCheckedOut ReservationStatus = "CHECKED_OUT"
	ReservationCancelled  ReservationStatus = "CANCELLED"
	ReservationNoShow     ReservationStatus = "NO_SHOW"
)

// maxSpecialRequestsLen bounds the free-form special requests field.
const maxSpecialRequestsLen = 1000

// Reservation books one room for one time range by one user.  It references
// motel, room, user and payment by id only; none of those own each other's
// lifecycle.  A reservation is created in Pending and mutated exclusively
// through the transition methods below: every transition either moves to
// the documented next state or fails with an InvalidOperation error leaving
// the reservation untouched.  Once Confirmed or later it is never deleted;
// cancellation is a status, not a deletion.
type Reservation struct {
	ID              uuid.UUID         `json:"id"`
	MotelID         uuid.UUID         `json:"motel_id"`
	RoomID          uuid.UUID         `json:"room_id"`
	UserID          uuid.UUID         `json:"user_id"`
	TimeRange       TimeRange         `json:"time_range"`
	Status          ReservationStatus `json:"status"`
	TotalAmount     Money             `json:"total_amount"`
	PaymentID       *uuid.UUID        `json:"payment_id,omitempty"`
	SpecialRequests *string           `json:"special_requests,omitempty"`
	CheckInTime     *time.Time        `json:"check_in_time,omitempty"`
	CheckOutTime    *time.Time        `json:"check_out_time,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`

	// events collects domain events produced by transitions until the
	// service layer drains and publishes them.
	events []Event
}

// NewReservation validates and constructs a Pending reservation.  The total
// amount is computed once here (room.PricePerHour over the range's duration)
// and never recomputed afterwards.  A ReservationCreatedEvent is recorded.
func NewReservation(motelID, roomID, userID uuid.UUID, room *Room, timeRange TimeRange, specialRequests *string) (*Reservation, error) {
	if motelID == uuid.Nil || roomID == uuid.Nil || userID == uuid.Nil {
		return nil, apperr.InvalidInput("motel, room and user IDs are required")
	}
	if specialRequests != nil && len(*specialRequests) > maxSpecialRequestsLen {
		return nil, apperr.InvalidInput("special requests cannot exceed %d characters", maxSpecialRequestsLen)
	}
	r := &Reservation{
		ID:              uuid.New(),
		MotelID:         motelID,
		RoomID:          roomID,
		UserID:          userID,
		TimeRange:       timeRange,
		Status:          ReservationPending,
		TotalAmount:     room.PricePerHour.ForDuration(timeRange.Duration()),
		SpecialRequests: specialRequests,
	}
	r.record(ReservationCreatedEvent{
		ReservationID: r.ID,
		UserID:        userID,
		MotelID:       motelID,
		RoomID:        roomID,
		StartTime:     timeRange.Start.Format(time.RFC3339),
		EndTime:       timeRange.End.Format(time.RFC3339),
		OccurredAt:    time.Now().UTC(),
	})
	return r, nil
}

// Blocks reports whether this reservation's status counts against room
// availability.  Pending reservations do not block: an unpaid booking must
// not lock the room against paying customers.
func (r *Reservation) Blocks() bool {
	return r.Status == ReservationConfirmed || r.Status == ReservationCheckedIn
}

// Confirm moves a Pending reservation to Confirmed.
func (r *Reservation) Confirm() error {
	if r.Status != ReservationPending {
		return apperr.InvalidOperation("confirm reservation", string(r.Status), string(ReservationPending))
	}
	r.Status = ReservationConfirmed
	return nil
}

// CheckIn moves a Confirmed reservation to CheckedIn and stamps the check-in
// time.
func (r *Reservation) CheckIn() error {
	if r.Status != ReservationConfirmed {
		return apperr.InvalidOperation("check in reservation", string(r.Status), string(ReservationConfirmed))
	}
	now := time.Now().UTC()
	r.Status = ReservationCheckedIn
	r.CheckInTime = &now
	return nil
}

// CheckOut moves a CheckedIn reservation to the terminal CheckedOut state
// and stamps the check-out time.
func (r *Reservation) CheckOut() error {
	if r.Status != ReservationCheckedIn {
		return apperr.InvalidOperation("check out reservation", string(r.Status), string(ReservationCheckedIn))
	}
	now := time.Now().UTC()
	r.Status = ReservationCheckedOut
	r.CheckOutTime = &now
	return nil
}

// Cancel moves a Pending, Confirmed or CheckedIn reservation to Cancelled
// and records a ReservationCancelledEvent.  Completed, no-show and already
// cancelled reservations cannot be cancelled, no matter how often retried.
func (r *Reservation) Cancel() error {
	switch r.Status {
	case ReservationPending, ReservationConfirmed, ReservationCheckedIn:
	default:
		return apperr.InvalidOperation("cancel reservation", string(r.Status),
			"PENDING, CONFIRMED or CHECKED_IN")
	}
	r.Status = ReservationCancelled
	r.record(ReservationCancelledEvent{
		ReservationID: r.ID,
		UserID:        r.UserID,
		OccurredAt:    time.Now().UTC(),
	})
	return nil
}

// MarkNoShow moves a Confirmed reservation whose window has fully elapsed
// without a check-in to the terminal NoShow state.  Driven by the no-show
// sweeper job, never by a client request.
func (r *Reservation) MarkNoShow(now time.Time) error {
	if r.Status != ReservationConfirmed {
		return apperr.InvalidOperation("mark reservation no-show", string(r.Status), string(ReservationConfirmed))
	}
	if now.Before(r.TimeRange.End) {
		return apperr.InvalidOperation("mark reservation no-show", "window still open", "window elapsed")
	}
	r.Status = ReservationNoShow
	return nil
}

// AssignPayment annotates the reservation with its payment's id.  This is a
// side annotation, not a status transition, and is legal in any status.
func (r *Reservation) AssignPayment(paymentID uuid.UUID) error {
	if paymentID == uuid.Nil {
		return apperr.InvalidInput("payment ID cannot be empty")
	}
	r.PaymentID = &paymentID
	return nil
}

func (r *Reservation) record(ev Event) { r.events = append(r.events, ev) }

// DrainEvents returns and clears the events recorded since the last drain.
func (r *Reservation) DrainEvents() []Event {
	evs := r.events
	r.events = nil
	return evs
}
