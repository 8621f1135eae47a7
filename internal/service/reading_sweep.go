package service

import "github.com/google/uuid"

// SweepMode selects when readings consumed by an invoice are marked billed.
// The mode is always chosen explicitly by the caller; there is no implicit
// default, because the two modes differ in correctness, not convenience.
type SweepMode int

const (
	// SweepImmediate flags consumed readings inside the same transaction as
	// the invoice write. Used for single-contract generation.
	SweepImmediate SweepMode = iota
	// SweepDeferred collects consumed readings for the batch scheduler to
	// flag in one pass after every contract has been evaluated. Marking a
	// shared reading billed mid-batch would hide it from a roommate's
	// invoice generated later in the same run.
	SweepDeferred
)

// ReadingSweep accumulates the meter readings consumed while assembling
// invoices. A reading consumed by several invoices (roommates splitting one
// meter) is recorded once.
type ReadingSweep struct {
	mode SweepMode
	ids  []uuid.UUID
	seen map[uuid.UUID]struct{}
}

func NewReadingSweep(mode SweepMode) *ReadingSweep {
	return &ReadingSweep{mode: mode, seen: make(map[uuid.UUID]struct{})}
}

func (s *ReadingSweep) Mode() SweepMode {
	return s.mode
}

func (s *ReadingSweep) Add(id uuid.UUID) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
}

// Drain returns the collected reading ids and resets the sweep.
func (s *ReadingSweep) Drain() []uuid.UUID {
	ids := s.ids
	s.ids = nil
	s.seen = make(map[uuid.UUID]struct{})
	return ids
}
