package aggregate

import (
	"strings"

	"github.com/go-faster/errors"

	"wolt-report-service/internal/orders"
	"wolt-report-service/internal/timebucket"
)

// ZonePolicy decides what happens to an order whose venue timezone cannot
// be resolved.
type ZonePolicy string

const (
	// ZoneSkip leaves the order out and reports it as skipped.
	ZoneSkip ZonePolicy = "skip"
	// ZoneFail rejects the whole batch.
	ZoneFail ZonePolicy = "fail"
)

func ParseZonePolicy(s string) (ZonePolicy, error) {
	switch ZonePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ZoneSkip:
		return ZoneSkip, nil
	case ZoneFail:
		return ZoneFail, nil
	default:
		return "", errors.Errorf("unknown zone policy %q", s)
	}
}

// Bucketed is an order annotated with its calendar keys.
type Bucketed struct {
	orders.Order
	YearMonth string
	Weekday   int
	Slot      int
}

type Skipped struct {
	OrderID string
	Zone    string
}

// Bucket derives calendar keys for every order, in input order.
func Bucket(in []orders.Order, policy ZonePolicy) ([]Bucketed, []Skipped, error) {
	out := make([]Bucketed, 0, len(in))
	var skipped []Skipped
	for _, o := range in {
		weekday, slot, err := timebucket.TimeSlot(o.DeliveredAtMs, o.Timezone)
		if err != nil {
			if policy == ZoneFail {
				return nil, nil, &orders.MalformedInputError{
					OrderID: o.ID,
					Field:   "venue_timezone",
					Reason:  "unrecognized timezone",
					Err:     err,
				}
			}
			skipped = append(skipped, Skipped{OrderID: o.ID, Zone: o.Timezone})
			continue
		}
		out = append(out, Bucketed{
			Order:     o,
			YearMonth: timebucket.YearMonth(o.DeliveredAtMs),
			Weekday:   weekday,
			Slot:      slot,
		})
	}
	return out, skipped, nil
}
