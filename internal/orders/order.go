package orders

import (
	"strings"
	"time"
)

const (
	StatusDelivered = "delivered"

	// UnknownCurrency is used when a record carries no currency.
	UnknownCurrency = "XXX"
)

// Order is one normalized delivery order. Money is kept in minor units.
type Order struct {
	ID            string
	VenueName     string
	Status        string
	DeliveredAtMs int64
	Timezone      string
	Currency      string
	TotalPrice    int64

	// MemberShare is set when the order was a group order and the
	// requesting member paid only a share of it.
	MemberShare *int64

	Items      []LineItem
	GroupItems []LineItem
}

type LineItem struct {
	Name   string
	Count  int64
	Amount int64
}

// EffectivePrice is what the user actually paid for the order. A member
// share only counts when it is positive.
func (o Order) EffectivePrice() int64 {
	if o.MemberShare != nil && *o.MemberShare > 0 {
		return *o.MemberShare
	}
	return o.TotalPrice
}

// EffectiveItems returns the order's own items, falling back to the items
// the user picked inside a group order.
func (o Order) EffectiveItems() []LineItem {
	if len(o.Items) > 0 {
		return o.Items
	}
	return o.GroupItems
}

// Venue returns the venue name cut at the first '\', '/', '|' or '+'.
func (o Order) Venue() string {
	name := o.VenueName
	if i := strings.IndexAny(name, `\/|+`); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

func (o Order) DeliveredAt() time.Time {
	return time.UnixMilli(o.DeliveredAtMs).UTC()
}
