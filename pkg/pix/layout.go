package pix

import (
	"math"
	"sort"
)

// ArrangeOptions controls Arrange.
type ArrangeOptions struct {
	GridSize float64
	LayerGap float64 // horizontal space between layers
	NodeGap  float64 // vertical space between rectangles in one layer
	Sweeps   int     // crossing reduction passes
}

// DefaultArrangeOptions returns spacing proportional to the grid.
func DefaultArrangeOptions(gridSize float64) ArrangeOptions {
	if gridSize <= 0 {
		gridSize = DefaultGridSize
	}
	return ArrangeOptions{
		GridSize: gridSize,
		LayerGap: 8 * gridSize,
		NodeGap:  4 * gridSize,
		Sweeps:   4,
	}
}

// Arrange lays out the regular rectangles in layers running left to right,
// so that connections leave one layer and enter the next. Collections are
// left where they are. The arranged drawing keeps the top-left corner of
// the rectangles' previous extent and every position is grid snapped.
// It returns the ids of the rectangles that moved, in document order.
//
// The method is a small Sugiyama layout: breadth-first layer assignment
// from the sources, barycentre crossing reduction, then median alignment
// within each layer.
func Arrange(d *Document, opts ArrangeOptions) []string {
	g := buildLayoutGraph(d)
	if len(g.nodes) == 0 {
		return nil
	}

	origin := Point{math.Inf(1), math.Inf(1)}
	for _, id := range g.nodes {
		r := g.rects[id]
		origin.X = math.Min(origin.X, r.X)
		origin.Y = math.Min(origin.Y, r.Y)
	}

	layers := g.assignLayers()
	for i := 0; i < opts.Sweeps; i++ {
		layers = g.reduceCrossings(layers)
	}
	pos := g.assignPositions(layers, opts)

	var moved []string
	for _, id := range g.nodes {
		p := pos[id]
		x := Snap(origin.X+p.X, opts.GridSize)
		y := Snap(origin.Y+p.Y, opts.GridSize)
		r := g.rects[id]
		if x == r.X && y == r.Y {
			continue
		}
		_ = d.MoveRectangle(id, x, y)
		moved = append(moved, id)
	}
	return moved
}

// layoutGraph is the connection graph between regular rectangles.
type layoutGraph struct {
	nodes    []string
	order    map[string]int // document order, the tie breaker everywhere
	rects    map[string]*Rectangle
	forward  map[string][]string
	backward map[string][]string
}

func buildLayoutGraph(d *Document) *layoutGraph {
	g := &layoutGraph{
		order:    make(map[string]int),
		rects:    make(map[string]*Rectangle),
		forward:  make(map[string][]string),
		backward: make(map[string][]string),
	}
	for _, r := range d.Rectangles() {
		if r.Kind == KindCollection {
			continue
		}
		g.order[r.ID] = len(g.nodes)
		g.nodes = append(g.nodes, r.ID)
		g.rects[r.ID] = r
	}

	seen := make(map[[2]string]bool)
	for _, c := range d.Connections() {
		if c.FromID == c.ToID {
			continue
		}
		if _, ok := g.rects[c.FromID]; !ok {
			continue
		}
		if _, ok := g.rects[c.ToID]; !ok {
			continue
		}
		edge := [2]string{c.FromID, c.ToID}
		if seen[edge] {
			continue
		}
		seen[edge] = true
		g.forward[c.FromID] = append(g.forward[c.FromID], c.ToID)
		g.backward[c.ToID] = append(g.backward[c.ToID], c.FromID)
	}
	return g
}

// assignLayers walks breadth first from every rectangle without incoming
// connections. Rectangles only reachable through a cycle start a walk of
// their own in layer 0.
func (g *layoutGraph) assignLayers() [][]string {
	layerOf := make(map[string]int)
	maxLayer := 0

	var queue []string
	walk := func() {
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, next := range g.forward[current] {
				if _, visited := layerOf[next]; visited {
					continue
				}
				layerOf[next] = layerOf[current] + 1
				maxLayer = max(maxLayer, layerOf[next])
				queue = append(queue, next)
			}
		}
	}

	for _, id := range g.nodes {
		if len(g.backward[id]) == 0 {
			layerOf[id] = 0
			queue = append(queue, id)
		}
	}
	walk()
	for _, id := range g.nodes {
		if _, ok := layerOf[id]; !ok {
			layerOf[id] = 0
			queue = append(queue, id)
			walk()
		}
	}

	layers := make([][]string, maxLayer+1)
	for _, id := range g.nodes {
		layers[layerOf[id]] = append(layers[layerOf[id]], id)
	}
	return layers
}

// reduceCrossings reorders each layer by the barycentre of its neighbours
// in the previous layer, then sweeps back using the next layer.
func (g *layoutGraph) reduceCrossings(layers [][]string) [][]string {
	if len(layers) <= 1 {
		return layers
	}

	result := make([][]string, len(layers))
	pos := make(map[string]float64)
	for l := range layers {
		result[l] = append([]string(nil), layers[l]...)
		for i, id := range result[l] {
			pos[id] = float64(i)
		}
	}

	reorder := func(layer []string, neighbours map[string][]string) {
		bary := make(map[string]float64, len(layer))
		for _, id := range layer {
			sum, count := 0.0, 0
			for _, n := range neighbours[id] {
				if p, ok := pos[n]; ok {
					sum += p
					count++
				}
			}
			if count > 0 {
				bary[id] = sum / float64(count)
			} else {
				bary[id] = pos[id]
			}
		}
		sort.Slice(layer, func(i, j int) bool {
			bi, bj := bary[layer[i]], bary[layer[j]]
			if bi != bj {
				return bi < bj
			}
			return g.order[layer[i]] < g.order[layer[j]]
		})
		for i, id := range layer {
			pos[id] = float64(i)
		}
	}

	for l := 1; l < len(result); l++ {
		reorder(result[l], g.backward)
	}
	for l := len(result) - 2; l >= 0; l-- {
		reorder(result[l], g.forward)
	}
	return result
}

// assignPositions returns top-left offsets relative to the layout origin.
func (g *layoutGraph) assignPositions(layers [][]string, opts ArrangeOptions) map[string]Point {
	layerX := make([]float64, len(layers))
	layerHeight := make([]float64, len(layers))
	x, tallest := 0.0, 0.0
	for l, layer := range layers {
		layerX[l] = x
		widest := 0.0
		for i, id := range layer {
			r := g.rects[id]
			widest = math.Max(widest, r.Width)
			layerHeight[l] += r.Height
			if i > 0 {
				layerHeight[l] += opts.NodeGap
			}
		}
		x += widest + opts.LayerGap
		tallest = math.Max(tallest, layerHeight[l])
	}

	// Work on centres so rectangles of different heights line up.
	centre := make(map[string]float64)
	for l, layer := range layers {
		y := (tallest - layerHeight[l]) / 2
		for _, id := range layer {
			h := g.rects[id].Height
			centre[id] = y + h/2
			y += h + opts.NodeGap
		}
	}

	median := func(ids []string) float64 {
		ys := make([]float64, 0, len(ids))
		for _, id := range ids {
			ys = append(ys, centre[id])
		}
		sort.Float64s(ys)
		return ys[len(ys)/2]
	}

	for pass := 0; pass < 3; pass++ {
		for l := 1; l < len(layers); l++ {
			for _, id := range layers[l] {
				if preds := g.backward[id]; len(preds) > 0 {
					centre[id] += (median(preds) - centre[id]) * 0.5
				}
			}
			g.separate(layers[l], centre, opts.NodeGap)
		}
		for l := len(layers) - 2; l >= 0; l-- {
			for _, id := range layers[l] {
				if succs := g.forward[id]; len(succs) > 0 {
					centre[id] += (median(succs) - centre[id]) * 0.3
				}
			}
			g.separate(layers[l], centre, opts.NodeGap)
		}
	}

	top := math.Inf(1)
	for _, id := range g.nodes {
		top = math.Min(top, centre[id]-g.rects[id].Height/2)
	}

	pos := make(map[string]Point, len(g.nodes))
	for l, layer := range layers {
		for _, id := range layer {
			pos[id] = Point{layerX[l], centre[id] - g.rects[id].Height/2 - top}
		}
	}
	return pos
}

// separate pushes rectangles down until consecutive ones in layer order are
// at least gap apart. The order chosen by crossing reduction is kept.
func (g *layoutGraph) separate(layer []string, centre map[string]float64, gap float64) {
	for i := 1; i < len(layer); i++ {
		prev, curr := g.rects[layer[i-1]], g.rects[layer[i]]
		minDist := prev.Height/2 + gap + curr.Height/2
		if centre[curr.ID]-centre[prev.ID] < minDist {
			centre[curr.ID] = centre[prev.ID] + minDist
		}
	}
}
