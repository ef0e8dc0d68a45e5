package paxos

import "sync"

// unset is the sentinel for "no promise/accept yet" (spec.md §3: both
// promisedProposalNumber and acceptedProposalNumber start at -1).
const unset = -1

// State holds the full mutable Paxos state of one council member: acceptor
// fields (promisedProposalNumber, acceptedProposalNumber, acceptedValue),
// proposer fields (proposalNumber, promisedBy, acceptedBy), and the mutex
// serializing every access to them.
//
// One mutex guards all of it, even though a member plays acceptor, proposer,
// and learner roles at once — the roles share one goroutine-unsafe struct,
// so one lock is both necessary and sufficient (spec.md §5).
type State struct {
	mu sync.Mutex

	selfID int
	n      int // council size, for majority arithmetic

	promisedProposalNumber int
	acceptedProposalNumber int
	acceptedValue          *string

	proposalNumber int
	promisedBy     map[int]struct{}
	acceptedBy     map[int]struct{}
}

func NewState(selfID, councilSize int) *State {
	return &State{
		selfID:                 selfID,
		n:                      councilSize,
		promisedProposalNumber: unset,
		acceptedProposalNumber: unset,
		proposalNumber:         0,
		promisedBy:             make(map[int]struct{}),
		acceptedBy:             make(map[int]struct{}),
	}
}

// Reset clears both proposer and acceptor state to initial. This is a test
// harness operation, not a protocol primitive: using it between rounds of
// the same decree would violate Paxos durability (spec.md §9). The reference
// behavior uses it only between disjoint scenarios, and this implementation
// preserves that rather than guard against the misuse.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promisedProposalNumber = unset
	s.acceptedProposalNumber = unset
	s.acceptedValue = nil
	s.proposalNumber = 0
	s.promisedBy = make(map[int]struct{})
	s.acceptedBy = make(map[int]struct{})
}

// majority reports whether count peers plus the implicit self vote form a
// strict majority of the council (spec.md §3 invariant 6).
func (s *State) majority(count int) bool {
	return count+1 > s.n/2
}

// adoptLocked implements Propagate(v, n) (spec.md §4.6): if v already equals
// acceptedValue this is a no-op (guards against re-flooding); otherwise it
// adopts (n, v) and reports that the caller should broadcast ACCEPT_REQUEST.
// Must be called with mu already held.
func (s *State) adoptLocked(v string, n int) bool {
	if s.acceptedValue != nil && *s.acceptedValue == v {
		return false
	}
	s.acceptedValue = &v
	s.acceptedProposalNumber = n
	return true
}

// --- observers (control surface, spec.md §6) ---

func (s *State) AcceptedValue() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.acceptedValue == nil {
		return "", false
	}
	return *s.acceptedValue, true
}

func (s *State) AcceptedProposalNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acceptedProposalNumber
}

func (s *State) PromisedProposalNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promisedProposalNumber
}

func (s *State) PromisedBy() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return keys(s.promisedBy)
}

func (s *State) AcceptedBy() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return keys(s.acceptedBy)
}

func keys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
