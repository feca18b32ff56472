package domain

// EventStats are derived counts over a participant snapshot.
// swagger:model EventStats
type EventStats struct {
	Capacity       int            `json:"capacity"`
	Total          int            `json:"total"`
	AvailableSeats int            `json:"available_seats"`
	CheckedIn      int            `json:"checked_in"`
	ByStatus       map[Status]int `json:"by_status"`
}

// AvailableSeats returns capacity minus every participant who has not declined.
// The result is negative when the event is over-subscribed.
func AvailableSeats(capacity int, participants []*Participant) int {
	taken := 0
	for _, p := range participants {
		if p.Status != StatusDeclined {
			taken++
		}
	}
	return capacity - taken
}

// CheckedInCount returns how many participants are checked in.
func CheckedInCount(participants []*Participant) int {
	n := 0
	for _, p := range participants {
		if p.Status == StatusCheckedIn {
			n++
		}
	}
	return n
}

// StatusBreakdown counts participants per status. Every status is present, zero-filled.
func StatusBreakdown(participants []*Participant) map[Status]int {
	out := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		out[s] = 0
	}
	for _, p := range participants {
		if _, ok := out[p.Status]; ok {
			out[p.Status]++
		}
	}
	return out
}

// Summarize computes EventStats for the event's current participants.
func Summarize(capacity int, participants []*Participant) EventStats {
	return EventStats{
		Capacity:       capacity,
		Total:          len(participants),
		AvailableSeats: AvailableSeats(capacity, participants),
		CheckedIn:      CheckedInCount(participants),
		ByStatus:       StatusBreakdown(participants),
	}
}
