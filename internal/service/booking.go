package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/model"
)

// BookingService orchestrates reservation creation and lifecycle
// transitions.  Creation validates the motel and room before touching the
// reservations table; the storage-level overlap guard remains the only
// authority on conflicts, so any in-memory availability knowledge is
// advisory.
type BookingService struct {
	motels       MotelStore
	rooms        RoomStore
	reservations ReservationStore
	publisher    EventPublisher
}

// NewBookingService wires a BookingService.
func NewBookingService(motels MotelStore, rooms RoomStore, reservations ReservationStore, publisher EventPublisher) *BookingService {
	return &BookingService{motels: motels, rooms: rooms, reservations: reservations, publisher: publisher}
}

// CreateReservation books a room.  It resolves the motel and room, rejects
// inactive targets, prices the stay, and hands the reservation to the
// overlap-guarded insert.  Exactly one of two concurrent overlapping
// requests succeeds; the loser gets a BookingConflict.
func (s *BookingService) CreateReservation(ctx context.Context, motelID, roomID, userID uuid.UUID, start, end time.Time, specialRequests *string) (*model.Reservation, error) {
	motel, err := s.motels.GetByID(ctx, motelID)
	if err != nil {
		return nil, err
	}
	if !motel.IsActive {
		return nil, apperr.InvalidInput("motel %s is not accepting bookings", motel.Name)
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.MotelID != motelID {
		return nil, apperr.NotFound("room", roomID)
	}
	if !room.IsAvailable {
		return nil, apperr.InvalidInput("room %s is not available for booking", room.RoomNumber)
	}
	timeRange, err := model.NewTimeRange(start, end)
	if err != nil {
		return nil, err
	}

	res, err := model.NewReservation(motelID, roomID, userID, room, timeRange, specialRequests)
	if err != nil {
		return nil, err
	}
	if err := s.reservations.CreateWithOverlapGuard(ctx, res); err != nil {
		return nil, err
	}
	s.publish(ctx, res)
	return res, nil
}

// AvailableRooms returns the motel's rooms free over [start, end) with
// capacity of at least minCapacity (0 disables the filter).
func (s *BookingService) AvailableRooms(ctx context.Context, motelID uuid.UUID, start, end time.Time, minCapacity int) ([]*model.Room, error) {
	timeRange, err := model.NewTimeRange(start, end)
	if err != nil {
		return nil, err
	}
	if _, err := s.motels.GetByID(ctx, motelID); err != nil {
		return nil, err
	}
	rooms, err := s.rooms.ListByMotel(ctx, motelID)
	if err != nil {
		return nil, err
	}
	blocking, err := s.reservations.ListBlockingByMotel(ctx, motelID, timeRange.Start, timeRange.End)
	if err != nil {
		return nil, err
	}
	return model.AvailableRooms(rooms, blocking, timeRange, minCapacity), nil
}

// Get fetches a reservation by id.
func (s *BookingService) Get(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

// ListByUser returns the user's reservations.
func (s *BookingService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Reservation, error) {
	return s.reservations.ListByUser(ctx, userID)
}

// ListByMotel returns a motel's reservations for owner views.
func (s *BookingService) ListByMotel(ctx context.Context, motelID uuid.UUID) ([]*model.Reservation, error) {
	return s.reservations.ListByMotel(ctx, motelID)
}

// Confirm transitions a reservation to Confirmed.  The update runs through
// the confirm-time overlap guard: of two overlapping Pending reservations
// the first confirm wins and the second gets a BookingConflict, keeping the
// Confirmed/CheckedIn set overlap-free.
func (s *BookingService) Confirm(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := res.Confirm(); err != nil {
		return nil, err
	}
	if err := s.reservations.ConfirmWithOverlapGuard(ctx, res); err != nil {
		return nil, err
	}
	s.publish(ctx, res)
	return res, nil
}

// CheckIn transitions a reservation to CheckedIn.
func (s *BookingService) CheckIn(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.transition(ctx, id, (*model.Reservation).CheckIn)
}

// CheckOut transitions a reservation to CheckedOut.
func (s *BookingService) CheckOut(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.transition(ctx, id, (*model.Reservation).CheckOut)
}

// Cancel transitions a reservation to Cancelled.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID) (*model.Reservation, error) {
	return s.transition(ctx, id, (*model.Reservation).Cancel)
}

func (s *BookingService) transition(ctx context.Context, id uuid.UUID, apply func(*model.Reservation) error) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(res); err != nil {
		return nil, err
	}
	if err := s.reservations.Update(ctx, res); err != nil {
		return nil, err
	}
	s.publish(ctx, res)
	return res, nil
}

// MarkNoShows sweeps Confirmed reservations whose window ended before now
// and marks them NoShow.  Errors on individual reservations are logged and
// skipped so one bad row never stalls the sweep.  Returns how many rows
// were marked.
func (s *BookingService) MarkNoShows(ctx context.Context, now time.Time) (int, error) {
	candidates, err := s.reservations.ListNoShowCandidates(ctx, now)
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, res := range candidates {
		if err := res.MarkNoShow(now); err != nil {
			log.Printf("no-show-sweeper: skip reservation %s: %v", res.ID, err)
			continue
		}
		if err := s.reservations.Update(ctx, res); err != nil {
			log.Printf("no-show-sweeper: update reservation %s: %v", res.ID, err)
			continue
		}
		marked++
	}
	return marked, nil
}

// publish drains the reservation's recorded events and sends them to the
// broker.  Failures are logged, never surfaced: event delivery is not part
// of a transition's correctness.
func (s *BookingService) publish(ctx context.Context, res *model.Reservation) {
	for _, ev := range res.DrainEvents() {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			log.Printf("booking: publish %s failed: %v", ev.EventName(), err)
		}
	}
}
