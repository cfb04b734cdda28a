package subscription

import "strings"

// Purpose is the fixed prefix of a correlation id.
type Purpose string

const (
	// PurposeSharedLine keys dialog;sla subscriptions toward a contact.
	PurposeSharedLine Purpose = "BLA_SUBSCRIBE"
	// PurposeRegInfo keys reg-event subscriptions toward a shared-line user.
	PurposeRegInfo Purpose = "REG_SUBSCRIBE"
)

// CorrelationID derives the id of the subscription for (purpose, target).
// The target is used exactly as given apart from surrounding whitespace,
// so the same pair always yields the same id.
func CorrelationID(purpose Purpose, target string) string {
	return string(purpose) + "." + strings.TrimSpace(target)
}

// Intent asks for a shared-line subscription from AOR toward Target.
// A nil Expires selects the configured default; an explicit zero ends the
// subscription.
type Intent struct {
	AOR     string `json:"aor"`
	Target  string `json:"target"`
	Expires *int   `json:"expires,omitempty"`
}
