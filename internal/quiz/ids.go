package quiz

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces client-local identifiers for questions and options.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random UUIDs. Safe for drafts that outlive a process.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// Sequence issues prefix-1, prefix-2, ... and is safe for concurrent use.
type Sequence struct {
	Prefix string
	n      atomic.Uint64
}

// NewSequence creates a Sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{Prefix: prefix}
}

func (s *Sequence) NewID() string {
	return s.Prefix + "-" + strconv.FormatUint(s.n.Add(1), 10)
}
