// Package graph builds and queries the cell dependency DAG (spec §4.2).
// It is grounded on the shape of OpenTofu's internal/dag graph engine -
// build once from named nodes, expose topological order and level
// partitions for parallel dispatch - generalized from resource/module
// addressing down to a single flat cell namespace with no parent
// pointers: every edge is a name→id lookup performed at query time, never
// stored back on the cell (see spec §9 "Cycles vs graphs").
package graph

import (
	"sort"

	"github.com/venus-notebooks/venus/internal/notebook"
	"github.com/venus-notebooks/venus/internal/tfdiags"
)

// CellID is an opaque integer assigned during graph construction. It is
// stable for the lifetime of a *Graph, never across reruns.
type CellID int

// Graph is the built dependency DAG for one notebook.
type Graph struct {
	cells      []notebook.CodeCell
	nameToID   map[string]CellID
	// producers[id] = set of cell ids that id directly depends on.
	producers map[CellID][]CellID
	// consumers[id] = set of cell ids that directly depend on id.
	consumers map[CellID][]CellID
}

// Cell returns the parsed cell for id.
func (g *Graph) Cell(id CellID) notebook.CodeCell { return g.cells[id] }

// CellID looks up a cell's id by name, ok=false if no such cell.
func (g *Graph) CellID(name string) (CellID, bool) {
	id, ok := g.nameToID[name]
	return id, ok
}

// Len returns the number of cells in the graph.
func (g *Graph) Len() int { return len(g.cells) }

// Build constructs a Graph from parsed code cells. Names must be unique
// (DuplicateName), every dependency must resolve to a known producer
// (MissingDependency), and the resulting graph must be acyclic
// (CyclicDependency) - spec §4.2.
func Build(cells []notebook.CodeCell) (*Graph, error) {
	g := &Graph{
		cells:     cells,
		nameToID:  make(map[string]CellID, len(cells)),
		producers: make(map[CellID][]CellID, len(cells)),
		consumers: make(map[CellID][]CellID, len(cells)),
	}

	for i, c := range cells {
		id := CellID(i)
		if _, exists := g.nameToID[c.Name]; exists {
			return nil, &tfdiags.Diagnostic{
				Kind:    tfdiags.InvalidOperation,
				Message: "duplicate cell name: " + c.Name,
			}
		}
		g.nameToID[c.Name] = id
	}

	for i, c := range cells {
		consumerID := CellID(i)
		for _, dep := range c.Dependencies {
			producerID, ok := g.nameToID[dep.ParamName]
			if !ok {
				return nil, &tfdiags.Diagnostic{
					Kind:    tfdiags.CellNotFound,
					Message: c.Name + " depends on " + dep.ParamName,
				}
			}
			g.producers[consumerID] = append(g.producers[consumerID], producerID)
			g.consumers[producerID] = append(g.consumers[producerID], consumerID)
		}
	}

	if cycle := findCycle(g); cycle != nil {
		names := make([]string, len(cycle))
		for i, id := range cycle {
			names[i] = cells[id].Name
		}
		return nil, &tfdiags.Diagnostic{
			Kind:    tfdiags.CyclicDependency,
			Message: "cyclic dependency: " + joinNames(names),
		}
	}

	return g, nil
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += " -> "
		}
		out += n
	}
	return out
}

// Dependents returns the direct consumers of id (cells naming id's cell
// as a dependency).
func (g *Graph) Dependents(id CellID) []CellID {
	out := make([]CellID, len(g.consumers[id]))
	copy(out, g.consumers[id])
	return out
}

// Producers returns the direct producers of id: the cells id's
// dependencies resolve to, in the same order as id's parsed Dependencies.
func (g *Graph) Producers(id CellID) []CellID {
	out := make([]CellID, len(g.producers[id]))
	copy(out, g.producers[id])
	return out
}

// TopologicalOrder returns a linear extension of the dependency graph:
// every producer appears before its consumers.
func (g *Graph) TopologicalOrder() []CellID {
	levels := g.TopologicalLevels(g.allIDs())
	var order []CellID
	for _, level := range levels {
		order = append(order, level...)
	}
	return order
}

func (g *Graph) allIDs() []CellID {
	ids := make([]CellID, len(g.cells))
	for i := range g.cells {
		ids[i] = CellID(i)
	}
	return ids
}

// TopologicalLevels partitions ids into levels via repeated Kahn peeling:
// level 0 holds every cell with no unresolved producer among ids, level k
// holds every remaining cell whose producers are all in levels < k. Cells
// within a level have no dependency path between them, so callers may
// dispatch a level in parallel (spec §4.2, §5). Within a level, ids are
// emitted in ascending CellID order - a concrete, deterministic tie-break;
// callers must still not depend on ordering across runs of a changed
// graph.
func (g *Graph) TopologicalLevels(ids []CellID) [][]CellID {
	inSet := make(map[CellID]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}

	remaining := make(map[CellID]int, len(ids))
	for _, id := range ids {
		count := 0
		for _, p := range g.producers[id] {
			if inSet[p] {
				count++
			}
		}
		remaining[id] = count
	}

	var levels [][]CellID
	for len(remaining) > 0 {
		var level []CellID
		for id, count := range remaining {
			if count == 0 {
				level = append(level, id)
			}
		}
		if len(level) == 0 {
			// Should be unreachable on an acyclic graph; guard against an
			// infinite loop if it ever happens.
			break
		}
		sort.Slice(level, func(i, j int) bool { return level[i] < level[j] })

		for _, id := range level {
			delete(remaining, id)
		}
		for _, id := range level {
			for _, consumer := range g.consumers[id] {
				if _, ok := remaining[consumer]; ok {
					remaining[consumer]--
				}
			}
		}
		levels = append(levels, level)
	}
	return levels
}

// InvalidatedCells returns id plus its transitive forward dependents, in
// topological order, via BFS over forward (consumer) edges - the
// canonical invalidation cascade (spec §4.2, §8).
func (g *Graph) InvalidatedCells(id CellID) []CellID {
	visited := map[CellID]bool{id: true}
	queue := []CellID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, consumer := range g.consumers[cur] {
			if !visited[consumer] {
				visited[consumer] = true
				queue = append(queue, consumer)
			}
		}
	}

	order := g.TopologicalOrder()
	var result []CellID
	for _, oid := range order {
		if visited[oid] {
			result = append(result, oid)
		}
	}
	return result
}
