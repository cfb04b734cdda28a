package notify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadSubscriptionState is returned for a missing or unusable
// Subscription-State header.
var ErrBadSubscriptionState = errors.New("bad subscription-state")

// SubscriptionExpires returns the remaining lifetime announced by a
// Subscription-State header: 0 when terminated, the expires parameter when
// active or pending.
func SubscriptionExpires(value string) (int, error) {
	parts := strings.Split(value, ";")
	state := strings.ToLower(strings.TrimSpace(parts[0]))

	switch state {
	case "terminated":
		return 0, nil
	case "active", "pending":
	case "":
		return 0, fmt.Errorf("%w: header missing", ErrBadSubscriptionState)
	default:
		return 0, fmt.Errorf("%w: state %q", ErrBadSubscriptionState, state)
	}

	for _, p := range parts[1:] {
		name, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "expires") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: expires %q", ErrBadSubscriptionState, v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: no expires for %s subscription", ErrBadSubscriptionState, state)
}
