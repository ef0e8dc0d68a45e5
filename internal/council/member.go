// Package council wires the paxos state machine, election driver, behavior
// gate, and transport into one runnable CouncilMember — the control surface
// spec.md §6 describes (construct/listen/startElection/reset/shutdown plus
// observers).
package council

import (
	"context"
	"log/slog"
	"sort"

	obserrors "github.com/paxos-council/council/internal/obs/errors"
	"github.com/paxos-council/council/internal/obs/logger"
	"github.com/paxos-council/council/internal/paxos"
	"github.com/paxos-council/council/internal/paxos/behavior"
	"github.com/paxos-council/council/internal/paxos/transport"
)

// gatedSender composes the behavior gate with the transport so every send a
// handler outcome or the election driver makes passes through fault
// injection exactly the same way (spec.md §4.3: applied before every
// outbound send, never to inbound messages).
type gatedSender struct {
	gate *behavior.Gate
	t    *transport.Transport
	log  *slog.Logger
}

func (g *gatedSender) Send(toID int, msg paxos.Message) {
	proceed, spanID := g.gate.Guard()
	if !proceed {
		g.log.Debug("behavior gate dropped outbound message", "to", toID, "type", msg.Type, "span", spanID)
		return
	}
	g.t.Send(toID, msg)
}

// Member is one council peer: simultaneously acceptor, proposer, and
// learner (spec.md §2).
type Member struct {
	id        int
	peers     []int
	state     *paxos.State
	sm        *paxos.StateMachine
	driver    *paxos.Driver
	transport *transport.Transport
	sender    *gatedSender
	log       *slog.Logger

	cancel context.CancelFunc
}

// New constructs a member. It does not start listening — call Listen for
// that. addr is this peer's own "host:port" entry in book.
func New(id int, addr string, book transport.AddressBook, profile behavior.Profile, timeouts paxos.Timeouts, log *slog.Logger) *Member {
	peers := make([]int, 0, len(book)-1)
	for pid := range book {
		if pid != id {
			peers = append(peers, pid)
		}
	}
	sort.Ints(peers)

	state := paxos.NewState(id, len(book))
	sm := paxos.NewStateMachine(state, log)
	gate := behavior.NewGate(profile)

	m := &Member{
		id:     id,
		peers:  peers,
		state:  state,
		sm:     sm,
		log:    log,
		cancel: func() {},
	}

	m.transport = transport.New(addr, book, m.dispatch, log)
	m.sender = &gatedSender{gate: gate, t: m.transport, log: log}

	// The driver's poll-tick debug log fires at PollTick granularity across a
	// whole phase timeout (up to 100 lines/peer/phase at the defaults) — so the
	// whole driver logger is sampled down: one record in ten below ERROR is
	// kept, which thins the driver's phase INFO lines along with the ticks.
	driverLog := slog.New(logger.NewSamplingHandler(log.Handler(), 0.1))
	m.driver = paxos.NewDriver(state, m.sender, peers, timeouts, driverLog)
	return m
}

// dispatch is the Transport.Handler for inbound messages: apply the state
// machine, then send out whatever Outcome calls for.
func (m *Member) dispatch(msg paxos.Message) {
	outcome := m.sm.Handle(msg)
	if outcome.Reply != nil {
		m.sender.Send(msg.From, *outcome.Reply)
	}
	if outcome.Broadcast != nil {
		for _, peer := range m.peers {
			m.sender.Send(peer, *outcome.Broadcast)
		}
	}
}

// Listen begins accepting inbound connections in the background. A bind
// failure is the one error surfaced synchronously to the caller (spec.md
// §7).
func (m *Member) Listen(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	if err := m.transport.Listen(ctx); err != nil {
		cancel()
		return obserrors.Bind("", err)
	}
	return nil
}

// StartElection drives a proposal for value on the caller's goroutine,
// independent from the listener (spec.md §4.5, §9).
func (m *Member) StartElection(ctx context.Context, value string) (ok bool, chosen string) {
	return m.driver.StartElection(ctx, value)
}

// Reset clears all proposer and acceptor state (spec.md §9: a test-harness
// operation, not a protocol primitive).
func (m *Member) Reset() {
	m.state.Reset()
}

// Shutdown stops listening. Idempotent.
func (m *Member) Shutdown() {
	m.cancel()
	m.transport.Shutdown()
}

func (m *Member) ID() int { return m.id }

func (m *Member) AcceptedValue() (string, bool) { return m.state.AcceptedValue() }
func (m *Member) AcceptedProposalNumber() int    { return m.state.AcceptedProposalNumber() }
func (m *Member) PromisedProposalNumber() int    { return m.state.PromisedProposalNumber() }
func (m *Member) PromisedBy() []int              { return m.state.PromisedBy() }
func (m *Member) AcceptedBy() []int              { return m.state.AcceptedBy() }
