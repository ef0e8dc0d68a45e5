package paxos

import (
	"context"
	"log/slog"
	"time"
)

// Timeouts bounds the two Paxos phases. The defaults match spec.md §4.5: T1
// and T2 are both 10s, strictly more than LARGE_DELAY (5s) and exactly twice
// it, so a council with slow-but-present peers never starves. Tests may inject
// shorter timeouts to keep the real-time budget small; the 2x ratio to the
// behavior gate's LargeDelay should be preserved when doing so.
type Timeouts struct {
	Phase1   time.Duration
	Phase2   time.Duration
	PollTick time.Duration
}

func DefaultTimeouts() Timeouts {
	return Timeouts{
		Phase1:   10 * time.Second,
		Phase2:   10 * time.Second,
		PollTick: 100 * time.Millisecond,
	}
}

// Sender delivers one message to a specific peer. Its concrete
// implementation (internal/council) composes the behavior gate and the
// transport, so every send made here is subject to fault injection exactly
// like replies made from StateMachine.Handle outcomes.
type Sender interface {
	Send(toID int, msg Message)
}

// Driver runs Phase 1 and Phase 2 of a local proposal against a State it
// shares with the StateMachine that handles inbound replies.
type Driver struct {
	state    *State
	sender   Sender
	peers    []int // all other council member ids
	timeouts Timeouts
	log      *slog.Logger
}

func NewDriver(state *State, sender Sender, peers []int, timeouts Timeouts, log *slog.Logger) *Driver {
	return &Driver{state: state, sender: sender, peers: peers, timeouts: timeouts, log: log}
}

// StartElection drives one proposal for value v to completion or timeout
// (spec.md §4.5). It runs on the caller's goroutine, independent of the
// listener's accept loop.
func (d *Driver) StartElection(ctx context.Context, v string) (ok bool, chosen string) {
	s := d.state

	s.mu.Lock()
	s.proposalNumber++
	n := s.proposalNumber
	// The proposer implicitly promises its own proposal (spec.md §3 invariant
	// 6: the proposer counts itself toward majority without a PREPARE/PROMISE
	// round trip), so its own promisedProposalNumber must never lag n — else
	// propagate's later acceptedProposalNumber := n would violate invariant 1
	// on this peer, which never routes its own messages through the handler.
	if n > s.promisedProposalNumber {
		s.promisedProposalNumber = n
	}
	s.promisedBy = make(map[int]struct{})
	s.acceptedBy = make(map[int]struct{})
	s.mu.Unlock()

	d.log.Info("election: phase 1 starting", "proposal_number", n, "value", v)

	prepare := Message{Type: Prepare, ProposalNumber: n, From: s.selfID}
	for _, peer := range d.peers {
		d.sender.Send(peer, prepare)
	}

	if !d.awaitMajority(ctx, d.timeouts.Phase1, func() int {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.promisedBy)
	}) {
		d.log.Info("election: phase 1 timed out", "proposal_number", n)
		return false, ""
	}

	s.mu.Lock()
	valToPropose := v
	if s.acceptedValue != nil {
		valToPropose = *s.acceptedValue
	}
	s.mu.Unlock()

	d.log.Info("election: phase 2 starting", "proposal_number", n, "value", valToPropose)

	accept := Message{Type: AcceptRequest, ProposalNumber: n, Value: &valToPropose, From: s.selfID}
	for _, peer := range d.peers {
		d.sender.Send(peer, accept)
	}

	if !d.awaitMajority(ctx, d.timeouts.Phase2, func() int {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.acceptedBy)
	}) {
		d.log.Info("election: phase 2 timed out", "proposal_number", n)
		return false, ""
	}

	d.log.Info("election: majority reached", "proposal_number", n, "value", valToPropose)
	d.propagate(valToPropose, n)
	return true, valToPropose
}

// propagate performs the same learner-dissemination step Propagate does
// when triggered from the ACCEPTED handler (spec.md §4.6), so the driver's
// own successful election also pushes the chosen value out immediately
// instead of waiting for stray ACCEPTED replies to trigger it.
func (d *Driver) propagate(v string, n int) {
	s := d.state
	s.mu.Lock()
	shouldBroadcast := s.adoptLocked(v, n)
	s.mu.Unlock()
	if !shouldBroadcast {
		return
	}

	msg := Message{Type: AcceptRequest, ProposalNumber: n, Value: &v, From: s.selfID}
	for _, peer := range d.peers {
		d.sender.Send(peer, msg)
	}
}

// awaitMajority polls tally at PollTick granularity until it reports a
// council majority or timeout elapses. The tally read races with handler
// writes by design (spec.md §5): majority is monotone, so an intermediate
// read only ever undercounts, never falsely reports success.
func (d *Driver) awaitMajority(ctx context.Context, timeout time.Duration, tally func() int) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(d.timeouts.PollTick)
	defer ticker.Stop()

	if d.state.majority(tally()) {
		return true
	}
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			count := tally()
			d.log.Debug("election: poll tick", "tally", count)
			if d.state.majority(count) {
				return true
			}
			if time.Now().After(deadline) {
				return false
			}
		}
	}
}
