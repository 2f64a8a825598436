package ledger

import (
	"context"
	"errors"
	"fmt"
)

// ClientRecord is one row of the external client ledger.
type ClientRecord struct {
	RecordID      string
	ClientCode    string
	ClientName    string
	TeamsID       string
	SharepointURL string
	NextNumber    int
}

// ErrNotFound is returned by stores when no record matches a client code.
var ErrNotFound = errors.New("client not found")

// ClientStore abstracts the external tabular record API.
type ClientStore interface {
	FindByCode(ctx context.Context, code string) (*ClientRecord, error)
	UpdateNextNumber(ctx context.Context, recordID string, next int) error
}

// Reservation is the outcome of minting a job number. JobNumber is always set;
// the metadata pointers are nil on the TBC path. Written reports whether the
// counter increment reached the store, independent of the returned number.
type Reservation struct {
	JobNumber     string
	TeamsID       *string
	SharepointURL *string
	RecordID      *string
	Written       bool
}

// FormatJobNumber renders a minted job number, e.g. "TOW 023".
func FormatJobNumber(code string, n int) string {
	return fmt.Sprintf("%s %03d", code, n)
}

// TBCJobNumber renders the sentinel job number for a code without a ledger row.
func TBCJobNumber(code string) string {
	return fmt.Sprintf("%s TBC", code)
}
