package models

import "strings"

// OrderStatus is the parsed form of an order's status token. The stored column
// stays a plain string because upstream producers have written a wider set of
// tokens over time; parsing funnels every known spelling into one of the
// constants below and everything else into StatusUnrecognized.
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusAccepted       OrderStatus = "accepted"
	StatusAssigned       OrderStatus = "assigned"
	StatusPreparing      OrderStatus = "preparing"
	StatusPicked         OrderStatus = "picked"
	StatusOnTheWay       OrderStatus = "on_the_way"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivering     OrderStatus = "delivering"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"

	// StatusUnrecognized is the catch-all for tokens outside the canonical
	// set, e.g. values written by older clients. The raw token is kept as-is
	// in the database; only the parsed view collapses to this value.
	StatusUnrecognized OrderStatus = "unrecognized"
)

var canonicalStatuses = map[OrderStatus]struct{}{
	StatusPending:        {},
	StatusAccepted:       {},
	StatusAssigned:       {},
	StatusPreparing:      {},
	StatusPicked:         {},
	StatusOnTheWay:       {},
	StatusOutForDelivery: {},
	StatusDelivering:     {},
	StatusCompleted:      {},
	StatusCancelled:      {},
}

// NormalizeStatusToken converts a wire token to storage form. Clients send
// both hyphen and underscore spellings ("out-for-delivery" vs
// "out_for_delivery"); storage always uses underscores.
func NormalizeStatusToken(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")
}

// ParseStatus normalizes raw and maps it onto the canonical set.
func ParseStatus(raw string) OrderStatus {
	s := OrderStatus(NormalizeStatusToken(raw))
	if _, ok := canonicalStatuses[s]; ok {
		return s
	}
	return StatusUnrecognized
}

func (s OrderStatus) String() string { return string(s) }

// IsTerminal reports whether no further transitions are issued for the order.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
