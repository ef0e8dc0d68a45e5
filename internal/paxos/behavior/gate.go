// Package behavior implements the per-peer fault profile (BehaviorGate) that
// every outbound send passes through. The gate is test instrumentation, not
// a transport feature: it never touches inbound messages, and its delays are
// a scoped pause before send, not a socket timeout.
package behavior

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Profile is one of the four fault-injection behaviors applied to a peer's
// outbound sends.
type Profile uint8

const (
	Immediate Profile = iota
	SmallDelay
	LargeDelay
	NoResponse
)

func (p Profile) String() string {
	switch p {
	case Immediate:
		return "IMMEDIATE_RESPONSE"
	case SmallDelay:
		return "SMALL_DELAY"
	case LargeDelay:
		return "LARGE_DELAY"
	case NoResponse:
		return "NO_RESPONSE"
	default:
		return "UNKNOWN"
	}
}

const (
	smallDelay = 1 * time.Second
	largeDelay = 5 * time.Second
)

// Gate applies a fixed Profile before every outbound send made by its owner.
type Gate struct {
	Profile Profile
}

func NewGate(p Profile) *Gate {
	return &Gate{Profile: p}
}

// Guard blocks the caller for the profile's delay (if any), then reports
// whether the send should proceed. A false return means the message is
// dropped silently (NO_RESPONSE) and send must not be called.
//
// spanID exists purely so a delayed send can be correlated across logs; it
// carries no protocol meaning.
func (g *Gate) Guard() (proceed bool, spanID string) {
	spanID = uuid.NewString()
	switch g.Profile {
	case Immediate:
		return true, spanID
	case SmallDelay:
		time.Sleep(smallDelay)
		return true, spanID
	case LargeDelay:
		time.Sleep(largeDelay)
		return true, spanID
	case NoResponse:
		return false, spanID
	default:
		return true, spanID
	}
}

// Random picks a profile at random, biased away from NO_RESPONSE so that
// "random" scenario peers still participate most of the time (spec.md §8,
// scenario 3: "peers 3-9 random (bias away from NO_RESPONSE)").
func Random(rng *rand.Rand) Profile {
	// Weighted so NO_RESPONSE is picked a quarter as often as each of the others.
	weights := []struct {
		p Profile
		w int
	}{
		{Immediate, 4},
		{SmallDelay, 4},
		{LargeDelay, 4},
		{NoResponse, 1},
	}
	total := 0
	for _, e := range weights {
		total += e.w
	}
	pick := rng.Intn(total)
	for _, e := range weights {
		if pick < e.w {
			return e.p
		}
		pick -= e.w
	}
	return Immediate
}
