package compose

import (
	"slices"

	"wolt-report-service/internal/aggregate"
	"wolt-report-service/internal/chart"
	"wolt-report-service/internal/timebucket"
)

// MonthlySeries groups monthly spend by currency over the sorted set of
// months present in the result.
func MonthlySeries(res aggregate.Result) chart.BarSeries {
	var months, currencies []string
	for _, m := range res.Monthly {
		if !slices.Contains(months, m.YearMonth) {
			months = append(months, m.YearMonth)
		}
		if !slices.Contains(currencies, m.Currency) {
			currencies = append(currencies, m.Currency)
		}
	}
	slices.Sort(months)

	s := chart.BarSeries{Categories: months}
	for _, cur := range currencies {
		g := chart.BarGroup{Name: cur, Values: make([]float64, len(months))}
		for _, m := range res.Monthly {
			if m.Currency != cur {
				continue
			}
			i := slices.Index(months, m.YearMonth)
			g.Values[i] = aggregate.Display(m.Minor).InexactFloat64()
		}
		s.Groups = append(s.Groups, g)
	}
	return s
}

func HeatmapSeries(res aggregate.Result) chart.GridSeries {
	s := chart.GridSeries{
		Rows:  slices.Clone(timebucket.SlotLabels[:]),
		Cols:  slices.Clone(timebucket.WeekdayLabels[:]),
		Cells: make([][]int, timebucket.Slots),
	}
	for slot := range res.Heatmap {
		s.Cells[slot] = res.Heatmap[slot][:]
	}
	return s
}

func SpendSeries(res aggregate.Result) chart.TreeSeries {
	return chart.TreeSeries{Roots: treeNodes(res.Spend)}
}

func treeNodes(in []aggregate.SpendNode) []chart.TreeNode {
	if len(in) == 0 {
		return nil
	}
	out := make([]chart.TreeNode, 0, len(in))
	for _, n := range in {
		node := chart.TreeNode{Name: n.Name, Children: treeNodes(n.Children)}
		if len(n.Children) == 0 {
			node.Value = aggregate.Display(n.Minor).InexactFloat64()
		}
		out = append(out, node)
	}
	return out
}
