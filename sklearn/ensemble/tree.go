package ensemble

import (
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// minSplitGain is the smallest loss reduction accepted for a split.
const minSplitGain = 1e-6

type nodeStats struct {
	g, h  float64
	count int
}

func (s nodeStats) sub(o nodeStats) nodeStats {
	return nodeStats{g: s.g - o.g, h: s.h - o.h, count: s.count - o.count}
}

type splitCandidate struct {
	feature int
	bin     int // last bin that goes left
	gain    float64
}

// treeBuilder grows one tree level by level over binned data. It is reused
// across boosting rounds.
type treeBuilder struct {
	data   *binnedData
	params TrainingParams

	nodeOf []int32 // tree node of each sample
	side   []uint8 // 0 unset, 1 left, 2 right; scratch for reassignment

	// per-level scratch, indexed by slot
	slotOf   []int32
	stats    []nodeStats
	best     []splitCandidate
	nz       []nodeStats
	left     []nodeStats
	curBin   []int
	zeroDone []bool
}

func newTreeBuilder(data *binnedData, params TrainingParams) *treeBuilder {
	return &treeBuilder{
		data:   data,
		params: params,
		nodeOf: make([]int32, data.nSamples),
		side:   make([]uint8, data.nSamples),
	}
}

// build grows a tree for the given gradients. It returns the tree and the leaf
// index of every training sample; the slice is owned by the builder.
func (b *treeBuilder) build(grad, hess []float64) (Tree, []int32) {
	for i := range b.nodeOf {
		b.nodeOf[i] = 0
	}
	tree := Tree{Nodes: []Node{{Left: -1, Right: -1}}}
	active := []int{0}

	for depth := 0; depth < b.params.MaxDepth && len(active) > 0; depth++ {
		b.prepareLevel(&tree, active, grad, hess)

		for f := range b.data.features {
			if b.data.features[f].splittable() {
				b.scanFeature(f, grad, hess)
			}
		}

		var next []int
		for s, id := range active {
			split := b.best[s]
			if split.feature < 0 {
				b.setLeaf(&tree.Nodes[id], b.stats[s])
				continue
			}
			l, r := len(tree.Nodes), len(tree.Nodes)+1
			child := Node{Left: -1, Right: -1, Depth: tree.Nodes[id].Depth + 1}
			tree.Nodes = append(tree.Nodes, child, child)
			n := &tree.Nodes[id]
			n.Feature = split.feature
			n.Threshold = b.data.features[split.feature].bounds[split.bin]
			n.Gain = split.gain
			n.Left, n.Right = l, r
			next = append(next, l, r)
		}
		b.reassign(&tree, active)
		active = next
	}

	if len(active) > 0 {
		b.prepareLevel(&tree, active, grad, hess)
		for s, id := range active {
			b.setLeaf(&tree.Nodes[id], b.stats[s])
		}
	}
	return tree, b.nodeOf
}

// prepareLevel maps active nodes to slots and accumulates their statistics.
func (b *treeBuilder) prepareLevel(tree *Tree, active []int, grad, hess []float64) {
	b.slotOf = resize(b.slotOf, len(tree.Nodes))
	for i := range b.slotOf {
		b.slotOf[i] = -1
	}
	for s, id := range active {
		b.slotOf[id] = int32(s)
	}

	n := len(active)
	b.stats = resize(b.stats, n)
	b.best = resize(b.best, n)
	b.nz = resize(b.nz, n)
	b.left = resize(b.left, n)
	b.curBin = resize(b.curBin, n)
	b.zeroDone = resize(b.zeroDone, n)
	for s := 0; s < n; s++ {
		b.stats[s] = nodeStats{}
		b.best[s] = splitCandidate{feature: -1, gain: minSplitGain}
	}

	for i, node := range b.nodeOf {
		if s := b.slotOf[node]; s >= 0 {
			st := &b.stats[s]
			st.g += grad[i]
			st.h += hess[i]
			st.count++
		}
	}
	for s, id := range active {
		tree.Nodes[id].SumHess = b.stats[s].h
		tree.Nodes[id].Count = b.stats[s].count
	}
}

// scanFeature walks the nonzero entries of feature f in bin order and
// evaluates every bin boundary for every active node. The zero entries of a
// node enter the scan as one block at the zero bin.
func (b *treeBuilder) scanFeature(f int, grad, hess []float64) {
	fb := &b.data.features[f]
	for s := range b.nz {
		b.nz[s] = nodeStats{}
		b.left[s] = nodeStats{}
		b.curBin[s] = -1
		b.zeroDone[s] = false
	}

	for _, r := range fb.rows {
		if s := b.slotOf[b.nodeOf[r]]; s >= 0 {
			st := &b.nz[s]
			st.g += grad[r]
			st.h += hess[r]
			st.count++
		}
	}

	for k, r := range fb.rows {
		s := b.slotOf[b.nodeOf[r]]
		if s < 0 {
			continue
		}
		bin := int(fb.bins[k])
		if !b.zeroDone[s] && bin >= fb.zeroBin {
			b.zeroDone[s] = true
			b.pushZero(f, int(s), fb.zeroBin)
		}
		b.push(f, int(s), bin, nodeStats{g: grad[r], h: hess[r], count: 1})
	}
	for s := range b.zeroDone {
		if !b.zeroDone[s] {
			b.pushZero(f, s, fb.zeroBin)
		}
	}
}

func (b *treeBuilder) pushZero(f, s, zeroBin int) {
	zero := b.stats[s].sub(b.nz[s])
	if zero.count > 0 {
		b.push(f, s, zeroBin, zero)
	}
}

// push adds mass in bin to the left side of slot s, first evaluating the split
// after the previous bin when bin starts a new one.
func (b *treeBuilder) push(f, s, bin int, mass nodeStats) {
	if cur := b.curBin[s]; cur >= 0 && bin != cur {
		b.evaluate(f, s, cur)
	}
	l := &b.left[s]
	l.g += mass.g
	l.h += mass.h
	l.count += mass.count
	b.curBin[s] = bin
}

func (b *treeBuilder) evaluate(f, s, bin int) {
	total := b.stats[s]
	left := b.left[s]
	right := total.sub(left)
	if left.h < b.params.MinChildWeight || right.h < b.params.MinChildWeight {
		return
	}
	gain := b.splitGain(left, right, total)
	if gain > b.best[s].gain {
		b.best[s] = splitCandidate{feature: f, bin: bin, gain: gain}
	}
}

// splitGain is ½[G_L²/(H_L+λ) + G_R²/(H_R+λ) − G²/(H+λ)] − γ.
func (b *treeBuilder) splitGain(left, right, total nodeStats) float64 {
	lambda := b.params.Lambda
	leftScore := left.g * left.g / (left.h + lambda)
	rightScore := right.g * right.g / (right.h + lambda)
	totalScore := total.g * total.g / (total.h + lambda)
	return 0.5*(leftScore+rightScore-totalScore) - b.params.Gamma
}

func (b *treeBuilder) setLeaf(n *Node, st nodeStats) {
	n.Left, n.Right = -1, -1
	n.LeafValue = -errors.SafeDivide(st.g, st.h+b.params.Lambda) * b.params.LearningRate
}

// reassign moves the samples of split nodes to their children.
func (b *treeBuilder) reassign(tree *Tree, active []int) {
	features := make(map[int]struct{})
	for s := range active {
		if f := b.best[s].feature; f >= 0 {
			features[f] = struct{}{}
		}
	}
	if len(features) == 0 {
		return
	}

	for i := range b.side {
		b.side[i] = 0
	}
	for f := range features {
		fb := &b.data.features[f]
		for k, r := range fb.rows {
			s := b.slotOf[b.nodeOf[r]]
			if s < 0 || b.best[s].feature != f {
				continue
			}
			if int(fb.bins[k]) <= b.best[s].bin {
				b.side[r] = 1
			} else {
				b.side[r] = 2
			}
		}
	}

	for i, node := range b.nodeOf {
		s := b.slotOf[node]
		if s < 0 || b.best[s].feature < 0 {
			continue
		}
		split := b.best[s]
		goLeft := b.side[i] == 1
		if b.side[i] == 0 {
			goLeft = b.data.features[split.feature].zeroBin <= split.bin
		}
		n := &tree.Nodes[node]
		if goLeft {
			b.nodeOf[i] = int32(n.Left)
		} else {
			b.nodeOf[i] = int32(n.Right)
		}
	}
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}
