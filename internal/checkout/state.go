package checkout

import (
	"fmt"
	"strings"
)

// State is a step of the checkout sequence.
type State int

const (
	Idle State = iota
	UpsellCheck
	UpsellPrompt
	DirectHandoff
	OrderSubmitted
	CartCleared
)

var stateNames = [...]string{
	Idle:           "idle",
	UpsellCheck:    "upsell-check",
	UpsellPrompt:   "upsell-prompt",
	DirectHandoff:  "direct-handoff",
	OrderSubmitted: "order-submitted",
	CartCleared:    "cart-cleared",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown checkout state %q", text)
}

// ClearPolicy decides when a submitted order empties the cart.
type ClearPolicy int

const (
	// ClearOnSuccess empties the cart only after every collaborator accepted
	// the order.
	ClearOnSuccess ClearPolicy = iota
	// ClearOnHandoff empties the cart as soon as the hand-off was attempted,
	// whatever its outcome.
	ClearOnHandoff
)

func ParseClearPolicy(s string) (ClearPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "on-success":
		return ClearOnSuccess, nil
	case "on-handoff":
		return ClearOnHandoff, nil
	default:
		return ClearOnSuccess, fmt.Errorf("unknown clear policy %q (want on-success or on-handoff)", s)
	}
}

func (p ClearPolicy) String() string {
	if p == ClearOnHandoff {
		return "on-handoff"
	}
	return "on-success"
}
