package console

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNothingSelected is returned when a bulk transition is requested with
	// an empty selection. No request leaves the client in that case.
	ErrNothingSelected = errors.New("console: no sub-orders selected")
	// ErrUnknownConfirmation is returned when a confirmation token does not
	// match the pending request.
	ErrUnknownConfirmation = errors.New("console: no matching pending confirmation")
	// ErrBulkInFlight is returned when a bulk transition is already executing.
	ErrBulkInFlight = errors.New("console: a bulk transition is already in flight")
)

// Confirmation is a pending bulk transition awaiting operator approval. The
// id snapshot is taken when the dialog opens, so later selection changes do
// not alter what an approved confirmation applies to.
type Confirmation struct {
	Token       string
	Status      string
	SubOrderIDs []string
	RequestedAt time.Time
}

func newConfirmation(status string, ids []string, at time.Time) *Confirmation {
	snapshot := make([]string, len(ids))
	copy(snapshot, ids)
	return &Confirmation{
		Token:       uuid.NewString(),
		Status:      status,
		SubOrderIDs: snapshot,
		RequestedAt: at,
	}
}
