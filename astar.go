package main

import (
	"container/heap"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// PathFinder finds a path between two cells. A nil path with ok == false
// means no path exists; errors are reserved for invalid input.
type PathFinder interface {
	BuildPath(start, goal Cell) (path *Path, ok bool, err error)
}

// openSet is the A* frontier: a binary heap of search nodes ordered by
// SearchNode.Less. Each queued node records its heap slot in index.
type openSet struct {
	nodes nodeHeap
}

func (o *openSet) Len() int { return len(o.nodes) }

func (o *openSet) push(n *SearchNode) { heap.Push(&o.nodes, n) }

func (o *openSet) pop() *SearchNode { return heap.Pop(&o.nodes).(*SearchNode) }

// update restores heap order after n's costs dropped.
func (o *openSet) update(n *SearchNode) { heap.Fix(&o.nodes, n.index) }

// nodeHeap is the heap.Interface behind openSet.
type nodeHeap []*SearchNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].Less(h[j]) }

func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*SearchNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	last := len(*h) - 1
	n := (*h)[last]
	(*h)[last] = nil
	*h = (*h)[:last]
	n.index = -1
	return n
}

// neighbourOffsets lists the 8 cells around a cell.
var neighbourOffsets = [8]Cell{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// GridSearch runs A* over a cost grid in room-local cells.
type GridSearch struct {
	Grid      *CostGrid
	Transform GridTransform
}

// BuildPath implements PathFinder.
func (s GridSearch) BuildPath(start, goal Cell) (*Path, bool, error) {
	return AStarPathOnGrid(s.Grid, s.Transform, start, goal)
}

// AStarPathOnGrid computes the lowest cost path from start to goal over
// grid, moving in 8 directions. Entering a cell costs the octile step plus
// the cell's penalty.
func AStarPathOnGrid(grid *CostGrid, tf GridTransform, start, goal Cell) (*Path, bool, error) {
	if grid == nil || !tf.Valid() {
		return nil, false, fmt.Errorf("search without grid or transform: %w", ErrInvalidPathInput)
	}

	store := NewNodeStore(grid.Width(), grid.Height())

	startNode, err := store.GetNode(start.X, start.Y)
	if err != nil {
		return nil, false, fmt.Errorf("start: %w", err)
	}
	targetNode, err := store.GetNode(goal.X, goal.Y)
	if err != nil {
		return nil, false, fmt.Errorf("goal: %w", err)
	}

	frontier := &openSet{}

	startNode.SetCostFromStart(0)
	startNode.SetHeuristicToGoal(OctileDistance(start, goal))
	frontier.push(startNode)

	closedSet := mapset.New[Cell]()

	for frontier.Len() > 0 {
		current := frontier.pop()

		// Check if we reached the goal
		if current == targetNode {
			path, err := buildMovementPath(current, tf)
			if err != nil {
				return nil, false, err
			}
			return path, true, nil
		}

		closedSet.Put(current.Cell)

		for _, offset := range neighbourOffsets {
			neighbour, penalty, ok := validNeighbour(current.Cell.Add(offset), grid, store, closedSet)
			if !ok {
				continue
			}

			tentative := current.CostFromStart() + OctileDistance(current.Cell, neighbour.Cell) + penalty
			queued := neighbour.index >= 0

			if tentative < neighbour.CostFromStart() || !queued {
				neighbour.SetCostFromStart(tentative)
				neighbour.SetHeuristicToGoal(OctileDistance(neighbour.Cell, goal))
				neighbour.Predecessor = current

				if queued {
					frontier.update(neighbour)
				} else {
					frontier.push(neighbour)
				}
			}
		}
	}

	// No path found
	return nil, false, nil
}

// validNeighbour returns the node at c and its penalty when c is inside the
// grid, walkable and not yet closed.
func validNeighbour(c Cell, grid *CostGrid, store *NodeStore, closed mapset.Set[Cell]) (*SearchNode, int, bool) {
	if !grid.InBounds(c.X, c.Y) || closed.Has(c) {
		return nil, 0, false
	}

	penalty, err := grid.Penalty(c.X, c.Y)
	if err != nil || penalty <= 0 {
		return nil, 0, false
	}

	node, err := store.GetNode(c.X, c.Y)
	if err != nil {
		return nil, 0, false
	}
	return node, penalty, true
}
