package ensemble

import (
	"gonum.org/v1/gonum/mat"
)

// Node represents a single node in a regression tree
type Node struct {
	// Split information (for internal nodes)
	Feature   int
	Threshold float64 // samples with value <= Threshold go left
	Gain      float64
	Left      int // -1 for leaves
	Right     int

	// Leaf information
	LeafValue float64 // already scaled by the learning rate

	// Statistics
	SumHess float64 // cover
	Count   int
	Depth   int
}

// IsLeaf returns true if the node is a leaf node
func (n *Node) IsLeaf() bool {
	return n.Left < 0
}

// Tree represents a single boosted tree. Node 0 is the root.
type Tree struct {
	Nodes []Node
}

// leafFor returns the leaf reached by row i of X.
func (t *Tree) leafFor(X mat.Matrix, i int) *Node {
	n := &t.Nodes[0]
	for !n.IsLeaf() {
		if X.At(i, n.Feature) <= n.Threshold {
			n = &t.Nodes[n.Left]
		} else {
			n = &t.Nodes[n.Right]
		}
	}
	return n
}

// NumLeaves returns the number of leaves.
func (t *Tree) NumLeaves() int {
	count := 0
	for i := range t.Nodes {
		if t.Nodes[i].IsLeaf() {
			count++
		}
	}
	return count
}

// MaxDepth returns the depth of the deepest leaf.
func (t *Tree) MaxDepth() int {
	depth := 0
	for i := range t.Nodes {
		if t.Nodes[i].Depth > depth {
			depth = t.Nodes[i].Depth
		}
	}
	return depth
}

// Model is a trained boosted ensemble.
type Model struct {
	Trees       []Tree
	BaseMargin  float64
	NumFeatures int
	Params      TrainingParams

	// EvalHistory holds the training eval metric after each round.
	EvalHistory []float64

	objective ObjectiveFunction
}

// PredictMargin returns the raw margin for every row of X.
func (m *Model) PredictMargin(X mat.Matrix) []float64 {
	rows, _ := X.Dims()
	out := make([]float64, rows)
	for i := 0; i < rows; i++ {
		margin := m.BaseMargin
		for k := range m.Trees {
			margin += m.Trees[k].leafFor(X, i).LeafValue
		}
		out[i] = margin
	}
	return out
}

// Predict returns transformed predictions (probabilities for binary:logistic).
func (m *Model) Predict(X mat.Matrix) []float64 {
	out := m.PredictMargin(X)
	for i, margin := range out {
		out[i] = m.objective.Transform(margin)
	}
	return out
}

// FeatureImportance returns the total split gain per feature.
func (m *Model) FeatureImportance() []float64 {
	imp := make([]float64, m.NumFeatures)
	for _, t := range m.Trees {
		for _, n := range t.Nodes {
			if !n.IsLeaf() {
				imp[n.Feature] += n.Gain
			}
		}
	}
	return imp
}
