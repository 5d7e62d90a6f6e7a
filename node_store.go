package main

import "fmt"

// SearchNode is the per-cell state of a single path search.
type SearchNode struct {
	Cell        Cell
	Predecessor *SearchNode

	costFromStart   int
	heuristicToGoal int
	totalEstimate   int

	index   int // position in the open heap, -1 when not queued
	touched bool
}

func (n *SearchNode) CostFromStart() int   { return n.costFromStart }
func (n *SearchNode) HeuristicToGoal() int { return n.heuristicToGoal }
func (n *SearchNode) TotalEstimate() int   { return n.totalEstimate }

// SetCostFromStart updates the accumulated cost and the total estimate.
func (n *SearchNode) SetCostFromStart(cost int) {
	n.costFromStart = cost
	n.totalEstimate = n.costFromStart + n.heuristicToGoal
}

// SetHeuristicToGoal updates the heuristic and the total estimate.
func (n *SearchNode) SetHeuristicToGoal(cost int) {
	n.heuristicToGoal = cost
	n.totalEstimate = n.costFromStart + n.heuristicToGoal
}

// Less orders nodes by total estimate, breaking ties on the heuristic.
func (n *SearchNode) Less(other *SearchNode) bool {
	if n.totalEstimate != other.totalEstimate {
		return n.totalEstimate < other.totalEstimate
	}
	return n.heuristicToGoal < other.heuristicToGoal
}

// NodeStore holds one SearchNode per grid cell for the lifetime of a search.
type NodeStore struct {
	width  int
	height int
	nodes  []SearchNode
}

// NewNodeStore allocates nodes for a width x height grid. Nodes are
// initialised on first lookup.
func NewNodeStore(width, height int) *NodeStore {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &NodeStore{
		width:  width,
		height: height,
		nodes:  make([]SearchNode, width*height),
	}
}

// GetNode returns the node at (x, y), or ErrOutOfRange when either
// coordinate falls outside [0, width) x [0, height).
func (s *NodeStore) GetNode(x, y int) (*SearchNode, error) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return nil, fmt.Errorf("node (%d, %d) in %dx%d store: %w", x, y, s.width, s.height, ErrOutOfRange)
	}

	n := &s.nodes[y*s.width+x]
	if !n.touched {
		n.Cell = Cell{X: x, Y: y}
		n.index = -1
		n.touched = true
	}
	return n, nil
}
