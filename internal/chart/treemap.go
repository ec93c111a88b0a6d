package chart

// Rect is an axis-aligned rectangle in pixels.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) inset(pad, header float64) Rect {
	out := Rect{X: r.X + pad, Y: r.Y + pad + header, W: r.W - 2*pad, H: r.H - 2*pad - header}
	out.W = max(out.W, 0)
	out.H = max(out.H, 0)
	return out
}

// Tile is one laid out treemap node. Root is the index of its top-level
// ancestor and drives the fill color.
type Tile struct {
	Rect
	Name     string
	Value    float64
	Depth    int
	Root     int
	HasChild bool
}

const tilePadding = 2

// Layout places nodes with slice-and-dice: even depths split the width,
// odd depths the height, each node taking a share proportional to its
// value. Inner nodes reserve header pixels on top for their label. Nodes
// without a positive value are left out.
func Layout(nodes []TreeNode, area Rect, header float64) []Tile {
	var tiles []Tile
	layoutLevel(nodes, area, header, 0, 0, &tiles)
	return tiles
}

func layoutLevel(nodes []TreeNode, area Rect, header float64, depth, root int, tiles *[]Tile) {
	var total float64
	for _, n := range nodes {
		if v := n.total(); v > 0 {
			total += v
		}
	}
	if total <= 0 || area.W <= 0 || area.H <= 0 {
		return
	}

	offset := 0.0
	for i, n := range nodes {
		v := n.total()
		if v <= 0 {
			continue
		}
		share := v / total
		r := Rect{X: area.X, Y: area.Y, W: area.W, H: area.H}
		if depth%2 == 0 {
			r.X += offset
			r.W = area.W * share
			offset += r.W
		} else {
			r.Y += offset
			r.H = area.H * share
			offset += r.H
		}

		ancestor := root
		if depth == 0 {
			ancestor = i
		}
		hasChild := len(n.Children) > 0
		*tiles = append(*tiles, Tile{Rect: r, Name: n.Name, Value: v, Depth: depth, Root: ancestor, HasChild: hasChild})

		if hasChild {
			h := header
			if r.H < 3*header {
				h = 0
			}
			layoutLevel(n.Children, r.inset(tilePadding, h), header, depth+1, ancestor, tiles)
		}
	}
}
