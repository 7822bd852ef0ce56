package transfer

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Status int

const (
	StatusPending Status = iota
	StatusAccepted
	StatusDeclined
	StatusExpired
)

func (s Status) String() string {
	return [...]string{"pending", "accepted", "declined", "expired"}[s]
}

// Terminal reports whether the request can no longer change state.
func (s Status) Terminal() bool {
	return s != StatusPending
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) Scan(i any) error {
	switch v := i.(type) {
	case string:
		switch v {
		case "pending":
			*s = StatusPending
			return nil
		case "accepted":
			*s = StatusAccepted
			return nil
		case "declined":
			*s = StatusDeclined
			return nil
		case "expired":
			*s = StatusExpired
			return nil
		}
	case []byte:
		return s.Scan(string(v))
	}
	panic("invalid scan type")
}

// Benefits is the locator's ordered, human-readable justification for a
// proposed transfer. Stored as a JSON document.
type Benefits []string

func (b Benefits) Value() (driver.Value, error) {
	return json.Marshal(b)
}

func (b *Benefits) Scan(i any) error {
	switch v := i.(type) {
	case []byte:
		return json.Unmarshal(v, b)
	case string:
		return json.Unmarshal([]byte(v), b)
	}
	return fmt.Errorf("cannot scan benefits from %T", i)
}

// Candidate is one ranked result from the transfer candidate locator. The
// core consumes it as-is and never re-derives the ranking.
type Candidate struct {
	TargetRideID uuid.UUID `json:"targetRideId"`
	Priority     string    `json:"priority"`
	Benefits     []string  `json:"benefits"`
}

type Request struct {
	ID              uuid.UUID     `db:"id"`
	OriginBookingID uuid.UUID     `db:"origin_booking_id"`
	OriginRideID    uuid.UUID     `db:"origin_ride_id"`
	TargetRideID    uuid.UUID     `db:"target_ride_id"`
	TargetBookingID uuid.NullUUID `db:"target_booking_id"`
	PassengerID     string        `db:"passenger_id"`
	Status          Status        `db:"status"`
	Priority        string        `db:"priority"`
	Benefits        Benefits      `db:"benefits"`
	CreatedAt       time.Time     `db:"created_at"`
	Deadline        time.Time     `db:"deadline"`
	RespondedAt     sql.NullTime  `db:"responded_at"`
}
