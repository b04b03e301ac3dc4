package cart

import "strings"

// Mode tells whether the cart is priced as a binding order or an estimate.
type Mode string

const (
	ModeOrder    Mode = "order"
	ModeEstimate Mode = "estimate"
)

// ModeInputs are the external facts mode derivation depends on.
type ModeInputs struct {
	// Requested is the raw mode request parameter, e.g. "?mode=estimate".
	Requested         string
	CanCreateOrder    bool
	CanCreateEstimate bool
}

// DeriveMode resolves the cart mode. An explicit estimate request wins; an
// operator who can only create estimates falls back to estimate; everything
// else is an order.
func DeriveMode(in ModeInputs) Mode {
	if strings.EqualFold(strings.TrimSpace(in.Requested), string(ModeEstimate)) {
		return ModeEstimate
	}
	if !in.CanCreateOrder && in.CanCreateEstimate {
		return ModeEstimate
	}
	return ModeOrder
}
