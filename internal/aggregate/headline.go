package aggregate

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

type Amount struct {
	Currency string
	Value    decimal.Decimal
}

// String renders the amount with one decimal, e.g. "5.0 EUR".
func (a Amount) String() string {
	return a.Value.StringFixed(1) + " " + a.Currency
}

// Headline holds the figures printed in the report's summary tile. Totals
// and Averages follow the order of Result.Totals.
type Headline struct {
	OrderCount int
	Totals     []Amount
	Averages   []Amount
}

func (r Result) Headline() Headline {
	h := Headline{OrderCount: r.OrderCount}
	for _, t := range r.Totals {
		h.Totals = append(h.Totals, Amount{Currency: t.Currency, Value: t.Total()})
		h.Averages = append(h.Averages, Amount{Currency: t.Currency, Value: t.Mean()})
	}
	return h
}

// JoinAmounts formats amounts as "a CUR / b CUR".
func JoinAmounts(amounts []Amount) string {
	parts := make([]string, 0, len(amounts))
	for _, a := range amounts {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " / ")
}

// Ranked is a named amount at some level of the spend hierarchy.
type Ranked struct {
	Currency string
	Name     string
	Minor    int64
}

func (r Ranked) Amount() Amount {
	return Amount{Currency: r.Currency, Value: Display(r.Minor)}
}

// TopVenues returns up to n venues by effective order spend across all
// currencies.
func (r Result) TopVenues(n int) []Ranked {
	return topN(slices.Clone(r.Venues), n)
}

// TopItems returns up to n dishes by spend, summing the same dish name
// across venues within a currency.
func (r Result) TopItems(n int) []Ranked {
	type key struct{ currency, name string }
	sums := make(map[key]int64)
	for _, root := range r.Spend {
		for _, venue := range root.Children {
			for _, item := range venue.Children {
				sums[key{root.Name, item.Name}] += item.Minor
			}
		}
	}
	out := make([]Ranked, 0, len(sums))
	for k, v := range sums {
		out = append(out, Ranked{Currency: k.currency, Name: k.name, Minor: v})
	}
	return topN(out, n)
}

func topN(in []Ranked, n int) []Ranked {
	slices.SortFunc(in, func(a, b Ranked) int {
		return cmp.Or(cmp.Compare(b.Minor, a.Minor), cmp.Compare(a.Name, b.Name), cmp.Compare(a.Currency, b.Currency))
	})
	if n >= 0 && len(in) > n {
		in = in[:n]
	}
	return in
}
