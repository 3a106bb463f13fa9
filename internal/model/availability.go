package model

import "github.com/google/uuid"

// RoomIsAvailable reports whether the room can host a reservation over the
// given range.  A room is available when it is marked available and no
// blocking reservation (CONFIRMED or CHECKED_IN) overlaps the range.
// Pending and terminal reservations never block.
func RoomIsAvailable(room *Room, reservations []*Reservation, tr TimeRange) bool {
	if !room.IsAvailable {
		return false
	}
	for _, r := range reservations {
		if r.RoomID != room.ID {
			continue
		}
		if r.Blocks() && r.TimeRange.Overlaps(tr) {
			return false
		}
	}
	return true
}

// AvailableRooms filters rooms down to those that can host a reservation
// over the given range and satisfy the minimum capacity.  A minCapacity of
// zero disables the capacity filter.  reservationsByRoom carries the
// candidate blocking reservations keyed by room id; rooms with no entry are
// treated as having none.
func AvailableRooms(rooms []*Room, reservationsByRoom map[uuid.UUID][]*Reservation, tr TimeRange, minCapacity int) []*Room {
	out := make([]*Room, 0, len(rooms))
	for _, room := range rooms {
		if minCapacity > 0 && room.Capacity < minCapacity {
			continue
		}
		if RoomIsAvailable(room, reservationsByRoom[room.ID], tr) {
			out = append(out, room)
		}
	}
	return out
}
