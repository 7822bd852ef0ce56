package booking

import (
	"database/sql"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Status int

const (
	StatusPending Status = iota
	StatusConfirmed
	StatusCancelled
)

func (s Status) String() string {
	return [...]string{"pending", "confirmed", "cancelled"}[s]
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
		case "confirmed":
			*s = StatusConfirmed
			return nil
		case "cancelled":
			*s = StatusCancelled
			return nil
		}
	case []byte:
		return s.Scan(string(v))
	}
	panic("invalid scan type")
}

type Booking struct {
	ID          uuid.UUID      `db:"id"`
	PassengerID string         `db:"passenger_id"`
	RideID      uuid.UUID      `db:"ride_id"`
	Seats       int            `db:"seats"`
	TotalPrice  int            `db:"total_price"`
	Status      Status         `db:"status"`
	Notes       sql.NullString `db:"notes"`
	CreatedAt   time.Time      `db:"created_at"`
}
