package notify

import (
	"context"
	"sync"
)

// Fake records events for tests.
type Fake struct {
	mu       sync.Mutex
	Accepted []Event
	Declined []Event
}

func NewFake() *Fake {
	return &Fake{}
}

func (f *Fake) TransferAccepted(_ context.Context, e Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Accepted = append(f.Accepted, e)
	return nil
}

func (f *Fake) TransferDeclined(_ context.Context, e Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Declined = append(f.Declined, e)
	return nil
}
