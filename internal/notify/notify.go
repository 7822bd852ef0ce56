package notify

import (
	"context"

	"github.com/google/uuid"
)

// Event describes a resolved transfer for downstream delivery channels
// (push/SMS/email). Delivery is fire-and-forget: the workflow never fails or
// rolls back because a notification could not be sent.
type Event struct {
	RequestID       uuid.UUID  `json:"requestId"`
	PassengerID     string     `json:"passengerId"`
	OriginBookingID uuid.UUID  `json:"originBookingId"`
	OriginRideID    uuid.UUID  `json:"originRideId"`
	TargetRideID    uuid.UUID  `json:"targetRideId"`
	TargetBookingID *uuid.UUID `json:"targetBookingId,omitempty"`
}

// Notifier is the outbound notification collaborator.
type Notifier interface {
	TransferAccepted(ctx context.Context, e Event) error
	TransferDeclined(ctx context.Context, e Event) error
}

// Discard drops all events. Used when no broker is configured.
type Discard struct{}

func (Discard) TransferAccepted(context.Context, Event) error { return nil }
func (Discard) TransferDeclined(context.Context, Event) error { return nil }
