package paxos

import "log/slog"

// Outcome describes the network effects of handling one inbound message.
// The caller (internal/council.Member) performs the actual sends, through
// the behavior gate, after the state mutex has been released — so a slow or
// dropped send never holds up another handler or the driver.
type Outcome struct {
	// Reply, if non-nil, is sent back to the message's sender.
	Reply *Message
	// Broadcast, if non-nil, is sent to every other council member (the
	// Propagate learner-dissemination step, spec.md §4.6).
	Broadcast *Message
}

// StateMachine dispatches the five message kinds against a peer's State.
type StateMachine struct {
	state *State
	log   *slog.Logger
}

func NewStateMachine(state *State, log *slog.Logger) *StateMachine {
	return &StateMachine{state: state, log: log}
}

// Handle applies one inbound message's effect and reports what to send in
// response, if anything. Every invariant from spec.md §3 is enforced here.
func (sm *StateMachine) Handle(msg Message) Outcome {
	switch msg.Type {
	case Prepare:
		return sm.handlePrepare(msg)
	case Promise:
		return sm.handlePromise(msg)
	case AcceptRequest:
		return sm.handleAcceptRequest(msg)
	case Accepted:
		return sm.handleAccepted(msg)
	case Nack:
		return sm.handleNack(msg)
	default:
		sm.log.Warn("unknown message type", "type", msg.Type, "from", msg.From)
		return Outcome{}
	}
}

func (sm *StateMachine) handlePrepare(msg Message) Outcome {
	s := sm.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ProposalNumber > s.promisedProposalNumber {
		s.promisedProposalNumber = msg.ProposalNumber
		reply := Message{
			Type:           Promise,
			ProposalNumber: s.promisedProposalNumber,
			Value:          s.acceptedValue,
			From:           s.selfID,
		}
		return Outcome{Reply: &reply}
	}

	reply := Message{
		Type:           Nack,
		ProposalNumber: s.promisedProposalNumber,
		From:           s.selfID,
	}
	return Outcome{Reply: &reply}
}

func (sm *StateMachine) handlePromise(msg Message) Outcome {
	s := sm.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.promisedBy[msg.From] = struct{}{}

	// Adopt the highest-numbered prior accepted value a promiser reports
	// (the rule that keeps a proposer from overwriting a value that may
	// already be chosen).
	if msg.Value != nil && msg.ProposalNumber > s.acceptedProposalNumber {
		s.acceptedProposalNumber = msg.ProposalNumber
		s.acceptedValue = msg.Value
	}
	return Outcome{}
}

func (sm *StateMachine) handleAcceptRequest(msg Message) Outcome {
	s := sm.state
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ProposalNumber >= s.promisedProposalNumber {
		s.promisedProposalNumber = msg.ProposalNumber
		s.acceptedProposalNumber = msg.ProposalNumber
		s.acceptedValue = msg.Value
		reply := Message{
			Type:           Accepted,
			ProposalNumber: msg.ProposalNumber,
			Value:          msg.Value,
			From:           s.selfID,
		}
		return Outcome{Reply: &reply}
	}

	reply := Message{
		Type:           Nack,
		ProposalNumber: s.promisedProposalNumber,
		From:           s.selfID,
	}
	return Outcome{Reply: &reply}
}

func (sm *StateMachine) handleAccepted(msg Message) Outcome {
	s := sm.state
	s.mu.Lock()
	defer s.mu.Unlock()

	s.acceptedBy[msg.From] = struct{}{}

	if !s.majority(len(s.acceptedBy)) {
		return Outcome{}
	}
	if msg.Value == nil || (s.acceptedValue != nil && *msg.Value == *s.acceptedValue) {
		return Outcome{}
	}

	v := *msg.Value
	if !s.adoptLocked(v, msg.ProposalNumber) {
		return Outcome{}
	}
	broadcast := Message{
		Type:           AcceptRequest,
		ProposalNumber: msg.ProposalNumber,
		Value:          &v,
		From:           s.selfID,
	}
	return Outcome{Broadcast: &broadcast}
}

func (sm *StateMachine) handleNack(msg Message) Outcome {
	sm.log.Debug("nack received", "from", msg.From, "promised", msg.ProposalNumber)
	return Outcome{}
}
