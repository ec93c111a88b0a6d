// Package aggregate reduces bucketed orders into the report datasets:
// monthly spend, per-currency totals, the weekday by time-slot heatmap and
// the currency > venue > item spend hierarchy.
package aggregate

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"wolt-report-service/internal/timebucket"
)

// MonthlySpend is the effective spend in one currency during one UTC month.
type MonthlySpend struct {
	Currency  string
	YearMonth string
	Minor     int64
}

type CurrencyTotal struct {
	Currency string
	Minor    int64
	Orders   int64
}

func (t CurrencyTotal) Total() decimal.Decimal { return Display(t.Minor) }

// Mean is the average effective price per order in display units.
func (t CurrencyTotal) Mean() decimal.Decimal {
	if t.Orders == 0 {
		return decimal.Zero
	}
	return Display(t.Minor).Div(decimal.NewFromInt(t.Orders))
}

// Heatmap counts orders by [slot][weekday].
type Heatmap [timebucket.Slots][timebucket.Weekdays]int

func (h Heatmap) Max() int {
	m := 0
	for _, row := range h {
		for _, v := range row {
			m = max(m, v)
		}
	}
	return m
}

// SpendNode is one level of the spend hierarchy. Minor is the sum of the
// children's amounts for inner nodes.
type SpendNode struct {
	Name     string
	Minor    int64
	Children []SpendNode
}

type Result struct {
	OrderCount int
	Monthly    []MonthlySpend
	Totals     []CurrencyTotal
	Heatmap    Heatmap
	Spend      []SpendNode
	// Venues holds the effective order spend per currency and cleaned venue
	// name, including orders without line items.
	Venues []Ranked
}

// Display converts minor units to display units.
func Display(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

type monthKey struct {
	currency string
	month    string
}

type venueKey struct {
	currency string
	venue    string
}

type itemKey struct {
	currency string
	venue    string
	item     string
}

// Aggregate computes every dataset in one pass. Outputs are sorted so the
// same input always yields the same result:
//   - Monthly by currency, then year-month
//   - Totals by descending total, then currency
//   - Spend children by descending amount, then name
//   - Venues by descending amount, then name and currency
func Aggregate(in []Bucketed) Result {
	res := Result{OrderCount: len(in)}

	monthly := make(map[monthKey]int64)
	totals := make(map[string]*CurrencyTotal)
	spend := make(map[itemKey]int64)
	venues := make(map[venueKey]int64)

	for _, o := range in {
		price := o.EffectivePrice()
		monthly[monthKey{o.Currency, o.YearMonth}] += price

		t, ok := totals[o.Currency]
		if !ok {
			t = &CurrencyTotal{Currency: o.Currency}
			totals[o.Currency] = t
		}
		t.Minor += price
		t.Orders++

		if o.Slot >= 0 && o.Slot < timebucket.Slots && o.Weekday >= 0 && o.Weekday < timebucket.Weekdays {
			res.Heatmap[o.Slot][o.Weekday]++
		}

		venue := o.Venue()
		venues[venueKey{o.Currency, venue}] += price
		for _, item := range o.EffectiveItems() {
			spend[itemKey{o.Currency, venue, item.Name}] += item.Amount
		}
	}

	res.Monthly = make([]MonthlySpend, 0, len(monthly))
	for k, v := range monthly {
		res.Monthly = append(res.Monthly, MonthlySpend{Currency: k.currency, YearMonth: k.month, Minor: v})
	}
	slices.SortFunc(res.Monthly, func(a, b MonthlySpend) int {
		return cmp.Or(cmp.Compare(a.Currency, b.Currency), cmp.Compare(a.YearMonth, b.YearMonth))
	})

	res.Totals = make([]CurrencyTotal, 0, len(totals))
	for _, t := range totals {
		res.Totals = append(res.Totals, *t)
	}
	slices.SortFunc(res.Totals, func(a, b CurrencyTotal) int {
		return cmp.Or(cmp.Compare(b.Minor, a.Minor), cmp.Compare(a.Currency, b.Currency))
	})

	res.Venues = make([]Ranked, 0, len(venues))
	for k, v := range venues {
		res.Venues = append(res.Venues, Ranked{Currency: k.currency, Name: k.venue, Minor: v})
	}
	res.Venues = topN(res.Venues, -1)

	res.Spend = buildHierarchy(spend)
	return res
}

func buildHierarchy(spend map[itemKey]int64) []SpendNode {
	tree := make(map[string]map[string][]SpendNode)
	for k, v := range spend {
		venues, ok := tree[k.currency]
		if !ok {
			venues = make(map[string][]SpendNode)
			tree[k.currency] = venues
		}
		venues[k.venue] = append(venues[k.venue], SpendNode{Name: k.item, Minor: v})
	}

	roots := make([]SpendNode, 0, len(tree))
	for currency, venues := range tree {
		root := SpendNode{Name: currency}
		for venue, items := range venues {
			node := SpendNode{Name: venue, Children: items}
			for _, item := range items {
				node.Minor += item.Minor
			}
			sortNodes(node.Children)
			root.Children = append(root.Children, node)
			root.Minor += node.Minor
		}
		sortNodes(root.Children)
		roots = append(roots, root)
	}
	sortNodes(roots)
	return roots
}

func sortNodes(nodes []SpendNode) {
	slices.SortFunc(nodes, func(a, b SpendNode) int {
		return cmp.Or(cmp.Compare(b.Minor, a.Minor), cmp.Compare(a.Name, b.Name))
	})
}
