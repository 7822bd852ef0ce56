package ride

import (
	"time"

	"github.com/google/uuid"
)

type Ride struct {
	ID             uuid.UUID `db:"id"`
	DriverID       string    `db:"driver_id"`
	TotalSeats     int       `db:"total_seats"`
	AvailableSeats int       `db:"available_seats"`
	Retired        bool      `db:"retired"`
	CreatedAt      time.Time `db:"created_at"`
}
