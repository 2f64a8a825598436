package ledger

import (
	"context"
	"strings"
	"sync"

	"dot-triage/internal/shared/telemetry"
)

// Service mints sequential job numbers against a ClientStore. Every failure
// degrades to the TBC reservation; ReserveNext never returns an error.
type Service struct {
	store    ClientStore
	reserved map[string]struct{}

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService constructs a Service. store may be nil when the ledger is not
// configured; every reservation then takes the TBC path without a network call.
func NewService(store ClientStore, reservedCodes []string) *Service {
	reserved := make(map[string]struct{}, len(reservedCodes))
	for _, code := range reservedCodes {
		if trimmed := strings.TrimSpace(code); trimmed != "" {
			reserved[strings.ToUpper(trimmed)] = struct{}{}
		}
	}
	return &Service{
		store:    store,
		reserved: reserved,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Reserved reports whether code bypasses the ledger entirely.
func (s *Service) Reserved(code string) bool {
	_, ok := s.reserved[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// ReserveNext looks up the client, formats the job number from the current
// counter and writes the incremented counter back. The write is fire-and-forget
// with respect to the caller: on failure the already-computed number is still
// returned and only Written reports the inconsistency.
func (s *Service) ReserveNext(ctx context.Context, code string) Reservation {
	tbc := Reservation{JobNumber: TBCJobNumber(code)}

	if s.Reserved(code) {
		return tbc
	}
	if s.store == nil {
		telemetry.Warn("ledger.unavailable", map[string]any{
			"client_code": code,
			"reason":      "no credentials configured",
		})
		return tbc
	}

	// Serializes read-modify-write per client code within this instance.
	// Concurrent instances can still race; the store offers no conditional
	// update primitive for the counter field.
	lock := s.lockFor(code)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.store.FindByCode(ctx, code)
	if err != nil {
		telemetry.Warn("ledger.lookup_failed", map[string]any{
			"client_code": code,
			"error":       err.Error(),
		})
		return tbc
	}

	jobNumber := FormatJobNumber(code, record.NextNumber)
	written := true
	if err := s.store.UpdateNextNumber(ctx, record.RecordID, record.NextNumber+1); err != nil {
		// The number has already been claimed by the report being built, so
		// it is returned regardless.
		written = false
		telemetry.Error("ledger.write_failed", map[string]any{
			"client_code": code,
			"record_id":   record.RecordID,
			"job_number":  jobNumber,
			"error":       err.Error(),
		})
	}

	return Reservation{
		JobNumber:     jobNumber,
		TeamsID:       optional(record.TeamsID),
		SharepointURL: optional(record.SharepointURL),
		RecordID:      optional(record.RecordID),
		Written:       written,
	}
}

func (s *Service) lockFor(code string) *sync.Mutex {
	key := strings.ToUpper(strings.TrimSpace(code))
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
