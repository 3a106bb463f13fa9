package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/model"
)

type bookingFixture struct {
	svc          *BookingService
	motel        *model.Motel
	room         *model.Room
	motels       *fakeMotelStore
	rooms        *fakeRoomStore
	reservations *fakeReservationStore
	publisher    *fakePublisher
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	addr, err := model.NewAddress("1 Main St", "Austin", "TX", "78701", "USA")
	require.NoError(t, err)
	motel, err := model.NewMotel(uuid.New(), "Sunset Motel", "", addr, "555-0100", "desk@sunset.test", nil)
	require.NoError(t, err)
	price, err := model.NewMoney(5000, "USD")
	require.NoError(t, err)
	room, err := model.NewRoom(motel.ID, "101", "Room 101", "", model.RoomTypeStandard, 2, price, nil)
	require.NoError(t, err)

	f := &bookingFixture{
		motel:        motel,
		room:         room,
		motels:       newFakeMotelStore(motel),
		rooms:        newFakeRoomStore(room),
		reservations: newFakeReservationStore(),
		publisher:    &fakePublisher{},
	}
	f.svc = NewBookingService(f.motels, f.rooms, f.reservations, f.publisher)
	return f
}

func window(d time.Duration) (time.Time, time.Time) {
	start := time.Now().UTC().Add(time.Hour)
	return start, start.Add(d)
}

func TestBookingCreateReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture(t)
		start, end := window(3 * time.Hour)

		res, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationPending, res.Status)
		assert.Equal(t, int64(15000), res.TotalAmount.AmountCents)
		assert.Contains(t, f.reservations.reservations, res.ID)
		assert.Equal(t, []string{"reservation.created"}, f.publisher.names())
	})

	t.Run("UnknownMotel", func(t *testing.T) {
		f := newBookingFixture(t)
		start, end := window(time.Hour)
		_, err := f.svc.CreateReservation(ctx, uuid.New(), f.room.ID, uuid.New(), start, end, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("RoomFromAnotherMotel", func(t *testing.T) {
		f := newBookingFixture(t)
		other := newBookingFixture(t)
		f.rooms.rooms[other.room.ID] = other.room
		start, end := window(time.Hour)
		_, err := f.svc.CreateReservation(ctx, f.motel.ID, other.room.ID, uuid.New(), start, end, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("InactiveMotel", func(t *testing.T) {
		f := newBookingFixture(t)
		f.motel.IsActive = false
		start, end := window(time.Hour)
		_, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	})

	t.Run("UnavailableRoom", func(t *testing.T) {
		f := newBookingFixture(t)
		f.room.IsAvailable = false
		start, end := window(time.Hour)
		_, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	})

	t.Run("InvalidWindow", func(t *testing.T) {
		f := newBookingFixture(t)
		start, end := window(time.Hour)
		_, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), end, start, nil)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	})

	t.Run("OverlapConflict", func(t *testing.T) {
		f := newBookingFixture(t)
		start, end := window(2 * time.Hour)

		first, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
		require.NoError(t, err)
		_, err = f.svc.Confirm(ctx, first.ID)
		require.NoError(t, err)

		_, err = f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start.Add(time.Hour), end.Add(time.Hour), nil)
		require.Error(t, err)
		assert.Equal(t, apperr.KindBookingConflict, apperr.KindOf(err))
	})

	t.Run("BackToBackAllowed", func(t *testing.T) {
		f := newBookingFixture(t)
		start, end := window(2 * time.Hour)

		first, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
		require.NoError(t, err)
		_, err = f.svc.Confirm(ctx, first.ID)
		require.NoError(t, err)

		_, err = f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), end, end.Add(time.Hour), nil)
		assert.NoError(t, err)
	})

	t.Run("PendingDoesNotBlock", func(t *testing.T) {
		f := newBookingFixture(t)
		start, end := window(2 * time.Hour)

		_, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
		require.NoError(t, err)
		// The first booking is still Pending, so the same window books fine.
		_, err = f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
		assert.NoError(t, err)
	})
}

func TestBookingAvailableRooms(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	start, end := window(2 * time.Hour)

	price, err := model.NewMoney(9000, "USD")
	require.NoError(t, err)
	suite, err := model.NewRoom(f.motel.ID, "201", "Suite 201", "", model.RoomTypeSuite, 6, price, nil)
	require.NoError(t, err)
	f.rooms.rooms[suite.ID] = suite

	res, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, res.ID)
	require.NoError(t, err)

	t.Run("ExcludesBookedRoom", func(t *testing.T) {
		got, err := f.svc.AvailableRooms(ctx, f.motel.ID, start, end, 0)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, suite.ID, got[0].ID)
	})

	t.Run("CapacityFilter", func(t *testing.T) {
		got, err := f.svc.AvailableRooms(ctx, f.motel.ID, end, end.Add(time.Hour), 4)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, suite.ID, got[0].ID)
	})

	t.Run("UnknownMotel", func(t *testing.T) {
		_, err := f.svc.AvailableRooms(ctx, uuid.New(), start, end, 0)
		require.Error(t, err)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestBookingTransitions(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	start, end := window(2 * time.Hour)
	res, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
	require.NoError(t, err)

	t.Run("ConfirmCheckInCheckOut", func(t *testing.T) {
		_, err := f.svc.Confirm(ctx, res.ID)
		require.NoError(t, err)
		_, err = f.svc.CheckIn(ctx, res.ID)
		require.NoError(t, err)
		got, err := f.svc.CheckOut(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationCheckedOut, got.Status)
	})

	t.Run("InvalidTransitionSurfaces", func(t *testing.T) {
		_, err := f.svc.CheckIn(ctx, res.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))
	})

	t.Run("CancelPublishesEvent", func(t *testing.T) {
		f2 := newBookingFixture(t)
		r2, err := f2.svc.CreateReservation(ctx, f2.motel.ID, f2.room.ID, uuid.New(), start, end, nil)
		require.NoError(t, err)
		_, err = f2.svc.Cancel(ctx, r2.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"reservation.created", "reservation.cancelled"}, f2.publisher.names())
	})
}

func TestBookingConfirmRechecksOverlap(t *testing.T) {
	ctx := context.Background()

	t.Run("SecondConfirmOfOverlappingPendingsConflicts", func(t *testing.T) {
		f := newBookingFixture(t)
		start, end := window(2 * time.Hour)

		first, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
		require.NoError(t, err)
		second, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
		require.NoError(t, err)

		got, err := f.svc.Confirm(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationConfirmed, got.Status)

		_, err = f.svc.Confirm(ctx, second.ID)
		require.Error(t, err)
		assert.Equal(t, apperr.KindBookingConflict, apperr.KindOf(err))

		winner, err := f.svc.Get(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationConfirmed, winner.Status)
		assert.Equal(t, []string{"reservation.created", "reservation.created"}, f.publisher.names())
	})

	t.Run("BackToBackPendingsBothConfirm", func(t *testing.T) {
		f := newBookingFixture(t)
		start, end := window(2 * time.Hour)

		first, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
		require.NoError(t, err)
		second, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), end, end.Add(time.Hour), nil)
		require.NoError(t, err)

		_, err = f.svc.Confirm(ctx, first.ID)
		require.NoError(t, err)
		got, err := f.svc.Confirm(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationConfirmed, got.Status)
	})
}

func TestBookingMarkNoShows(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	start, end := window(time.Hour)

	confirmed, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, confirmed.ID)
	require.NoError(t, err)

	pending, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), end, end.Add(time.Hour), nil)
	require.NoError(t, err)

	t.Run("MarksElapsedConfirmed", func(t *testing.T) {
		marked, err := f.svc.MarkNoShows(ctx, end.Add(time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, marked)
		got, err := f.svc.Get(ctx, confirmed.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationNoShow, got.Status)
	})

	t.Run("LeavesOthersAlone", func(t *testing.T) {
		got, err := f.svc.Get(ctx, pending.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationPending, got.Status)
	})

	t.Run("NothingToMark", func(t *testing.T) {
		marked, err := f.svc.MarkNoShows(ctx, end.Add(time.Minute))
		require.NoError(t, err)
		assert.Zero(t, marked)
	})
}

func TestBookingPublishFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	f.publisher.err = errBoom
	start, end := window(time.Hour)

	res, err := f.svc.CreateReservation(ctx, f.motel.ID, f.room.ID, uuid.New(), start, end, nil)
	require.NoError(t, err)
	assert.Contains(t, f.reservations.reservations, res.ID)
}
