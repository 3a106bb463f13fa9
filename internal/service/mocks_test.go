package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/baltgc/gomotel/internal/apperr"
	"github.com/baltgc/gomotel/internal/gateway"
	"github.com/baltgc/gomotel/internal/model"
)

// In-memory fakes for the storage interfaces.  Each fake allows injecting a
// forced error to exercise failure paths.

type fakeMotelStore struct {
	motels map[uuid.UUID]*model.Motel
}

func newFakeMotelStore(ms ...*model.Motel) *fakeMotelStore {
	f := &fakeMotelStore{motels: map[uuid.UUID]*model.Motel{}}
	for _, m := range ms {
		f.motels[m.ID] = m
	}
	return f
}

func (f *fakeMotelStore) GetByID(_ context.Context, id uuid.UUID) (*model.Motel, error) {
	if m, ok := f.motels[id]; ok {
		return m, nil
	}
	return nil, apperr.NotFound("motel", id)
}

type fakeRoomStore struct {
	rooms map[uuid.UUID]*model.Room
}

func newFakeRoomStore(rs ...*model.Room) *fakeRoomStore {
	f := &fakeRoomStore{rooms: map[uuid.UUID]*model.Room{}}
	for _, r := range rs {
		f.rooms[r.ID] = r
	}
	return f
}

func (f *fakeRoomStore) GetByID(_ context.Context, id uuid.UUID) (*model.Room, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, apperr.NotFound("room", id)
}

func (f *fakeRoomStore) ListByMotel(_ context.Context, motelID uuid.UUID) ([]*model.Room, error) {
	var out []*model.Room
	for _, r := range f.rooms {
		if r.MotelID == motelID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeReservationStore struct {
	reservations map[uuid.UUID]*model.Reservation
	createErr    error
	updateErr    error
	updates      int
}

func newFakeReservationStore(rs ...*model.Reservation) *fakeReservationStore {
	f := &fakeReservationStore{reservations: map[uuid.UUID]*model.Reservation{}}
	for _, r := range rs {
		f.reservations[r.ID] = r
	}
	return f
}

func (f *fakeReservationStore) CreateWithOverlapGuard(_ context.Context, res *model.Reservation) error {
	if f.createErr != nil {
		return f.createErr
	}
	// Mirror the real guard: reject overlaps with blocking reservations.
	for _, existing := range f.reservations {
		if existing.RoomID == res.RoomID && existing.Blocks() && existing.TimeRange.Overlaps(res.TimeRange) {
			return apperr.BookingConflict(res.RoomID, res.TimeRange.Start, res.TimeRange.End, existing.ID)
		}
	}
	f.reservations[res.ID] = res
	return nil
}

func (f *fakeReservationStore) ConfirmWithOverlapGuard(_ context.Context, res *model.Reservation) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.reservations[res.ID]; !ok {
		return apperr.NotFound("reservation", res.ID)
	}
	// Mirror the real guard: re-check blocking overlaps, excluding the
	// reservation being confirmed.
	for _, existing := range f.reservations {
		if existing.ID != res.ID && existing.RoomID == res.RoomID &&
			existing.Blocks() && existing.TimeRange.Overlaps(res.TimeRange) {
			return apperr.BookingConflict(res.RoomID, res.TimeRange.Start, res.TimeRange.End, existing.ID)
		}
	}
	f.reservations[res.ID] = res
	f.updates++
	return nil
}

func (f *fakeReservationStore) GetByID(_ context.Context, id uuid.UUID) (*model.Reservation, error) {
	if r, ok := f.reservations[id]; ok {
		return r, nil
	}
	return nil, apperr.NotFound("reservation", id)
}

func (f *fakeReservationStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Reservation, error) {
	var out []*model.Reservation
	for _, r := range f.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) ListByMotel(_ context.Context, motelID uuid.UUID) ([]*model.Reservation, error) {
	var out []*model.Reservation
	for _, r := range f.reservations {
		if r.MotelID == motelID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) ListBlockingByMotel(_ context.Context, motelID uuid.UUID, start, end time.Time) (map[uuid.UUID][]*model.Reservation, error) {
	window := model.TimeRange{Start: start, End: end}
	byRoom := map[uuid.UUID][]*model.Reservation{}
	for _, r := range f.reservations {
		if r.MotelID == motelID && r.Blocks() && r.TimeRange.Overlaps(window) {
			byRoom[r.RoomID] = append(byRoom[r.RoomID], r)
		}
	}
	return byRoom, nil
}

func (f *fakeReservationStore) ListNoShowCandidates(_ context.Context, cutoff time.Time) ([]*model.Reservation, error) {
	var out []*model.Reservation
	for _, r := range f.reservations {
		if r.Status == model.ReservationConfirmed && !r.TimeRange.End.After(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) Update(_ context.Context, res *model.Reservation) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.reservations[res.ID]; !ok {
		return apperr.NotFound("reservation", res.ID)
	}
	f.reservations[res.ID] = res
	f.updates++
	return nil
}

type fakePaymentStore struct {
	payments map[uuid.UUID]*model.Payment
}

func newFakePaymentStore(ps ...*model.Payment) *fakePaymentStore {
	f := &fakePaymentStore{payments: map[uuid.UUID]*model.Payment{}}
	for _, p := range ps {
		f.payments[p.ID] = p
	}
	return f
}

func (f *fakePaymentStore) Create(_ context.Context, p *model.Payment) error {
	for _, existing := range f.payments {
		if existing.ReservationID == p.ReservationID {
			return apperr.Conflict("duplicate payment", "reservation %s already has a payment", p.ReservationID)
		}
	}
	f.payments[p.ID] = p
	return nil
}

func (f *fakePaymentStore) GetByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	if p, ok := f.payments[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("payment", id)
}

func (f *fakePaymentStore) GetByReservationID(_ context.Context, reservationID uuid.UUID) (*model.Payment, error) {
	for _, p := range f.payments {
		if p.ReservationID == reservationID {
			return p, nil
		}
	}
	return nil, apperr.NotFound("payment for reservation", reservationID)
}

func (f *fakePaymentStore) ListByUser(_ context.Context, _ uuid.UUID) ([]*model.Payment, error) {
	var out []*model.Payment
	for _, p := range f.payments {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePaymentStore) Update(_ context.Context, p *model.Payment) error {
	if _, ok := f.payments[p.ID]; !ok {
		return apperr.NotFound("payment", p.ID)
	}
	f.payments[p.ID] = p
	return nil
}

// fakeGateway scripts gateway answers and records calls.
type fakeGateway struct {
	chargeResp  *gateway.Payment
	chargeErr   error
	getResp     *gateway.Payment
	getErr      error
	refundErr   error
	chargeCalls []gateway.ChargeRequest
	refundCalls []string
}

func (f *fakeGateway) CreateCharge(_ context.Context, req gateway.ChargeRequest) (*gateway.Payment, error) {
	f.chargeCalls = append(f.chargeCalls, req)
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	return f.chargeResp, nil
}

func (f *fakeGateway) GetPayment(_ context.Context, _ string) (*gateway.Payment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getResp, nil
}

func (f *fakeGateway) Refund(_ context.Context, id string) error {
	f.refundCalls = append(f.refundCalls, id)
	return f.refundErr
}

// fakePublisher records published events.
type fakePublisher struct {
	events []model.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev model.Event) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) names() []string {
	var out []string
	for _, ev := range f.events {
		out = append(out, ev.EventName())
	}
	return out
}

var errBoom = errors.New("boom")
