package modgraph

import (
	"container/list"
	"fmt"
	"strings"
)

// ProcessingQueue wraps a list-based queue for Kahn's algorithm processing.
// It holds modules that are ready to be processed (in-degree of 0).
type ProcessingQueue struct {
	queue *list.List
}

// NewProcessingQueue creates a new empty processing queue.
func NewProcessingQueue() *ProcessingQueue {
	return &ProcessingQueue{queue: list.New()}
}

// Enqueue adds a module id to the back of the queue.
func (pq *ProcessingQueue) Enqueue(id string) {
	pq.queue.PushBack(id)
}

// Dequeue removes and returns the module id at the front of the queue.
// Returns empty string and false if the queue is empty.
func (pq *ProcessingQueue) Dequeue() (string, bool) {
	if pq.queue.Len() == 0 {
		return "", false
	}
	elem := pq.queue.Front()
	pq.queue.Remove(elem)
	return elem.Value.(string), true
}

// IsEmpty returns true if the queue has no modules.
func (pq *ProcessingQueue) IsEmpty() bool {
	return pq.queue.Len() == 0
}

// CalculateInDegrees computes the number of importers for each module.
// First step of Kahn's algorithm.
func (g *Graph) CalculateInDegrees() map[string]int {
	inDegree := make(map[string]int)
	for id := range g.Modules {
		inDegree[id] = 0
	}
	for _, children := range g.Children {
		for _, child := range children {
			inDegree[child]++
		}
	}
	return inDegree
}

// initializeQueue seeds the queue with zero in-degree modules in discovery
// order, keeping the emit order deterministic.
func (g *Graph) initializeQueue(inDegree map[string]int) *ProcessingQueue {
	pq := NewProcessingQueue()
	for _, id := range g.Order {
		if inDegree[id] == 0 {
			pq.Enqueue(id)
		}
	}
	return pq
}

// CycleInfo describes modules that participate in or are blocked by an
// import cycle.
type CycleInfo struct {
	TotalModules    int      // Total number of modules in the graph
	ProcessedCount  int      // Modules ordered before the algorithm stalled
	CycleModules    []string // Modules on or behind a cycle, in discovery order
	CyclePath       []string // One ordered cycle path (first participant at both ends)
}

// Describe renders the cycle info for diagnostics output.
func (ci *CycleInfo) Describe() string {
	msg := fmt.Sprintf("import cycle: %d of %d modules are on or behind a cycle",
		len(ci.CycleModules), ci.TotalModules)
	if len(ci.CyclePath) > 0 {
		msg += fmt.Sprintf("\nCycle path: %s", strings.Join(ci.CyclePath, " -> "))
	}
	return msg
}

// EmitOrder returns module ids in topological order (importers first).
// JavaScript module graphs may legitimately contain cycles; cycle members
// are appended in discovery order after the acyclic portion, so the result
// always covers every module and is deterministic for a given graph.
func (g *Graph) EmitOrder() []string {
	inDegree := g.CalculateInDegrees()
	queue := g.initializeQueue(inDegree)

	ordered := make([]string, 0, len(g.Modules))
	processed := make(map[string]bool)

	for !queue.IsEmpty() {
		id, _ := queue.Dequeue()
		ordered = append(ordered, id)
		processed[id] = true

		for _, child := range g.GetChildren(id) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue.Enqueue(child)
			}
		}
	}

	// Append any cycle members in discovery order.
	for _, id := range g.Order {
		if !processed[id] {
			ordered = append(ordered, id)
		}
	}
	return ordered
}

// DetectCycles runs Kahn's algorithm and reports any modules that could not
// be ordered. Returns nil when the graph is acyclic. Used by the graph
// command for diagnostics; the build itself tolerates cycles.
func (g *Graph) DetectCycles() *CycleInfo {
	inDegree := g.CalculateInDegrees()
	queue := g.initializeQueue(inDegree)

	processed := make(map[string]bool)
	for !queue.IsEmpty() {
		id, _ := queue.Dequeue()
		processed[id] = true
		for _, child := range g.GetChildren(id) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue.Enqueue(child)
			}
		}
	}

	if len(processed) == len(g.Modules) {
		return nil
	}

	var stuck []string
	stuckSet := make(map[string]bool)
	for _, id := range g.Order {
		if !processed[id] {
			stuck = append(stuck, id)
			stuckSet[id] = true
		}
	}

	var cyclePath []string
	for _, id := range stuck {
		if path := g.findCyclePath(id, stuckSet); path != nil {
			cyclePath = path
			break
		}
	}

	return &CycleInfo{
		TotalModules:   len(g.Modules),
		ProcessedCount: len(processed),
		CycleModules:   stuck,
		CyclePath:      cyclePath,
	}
}

// findCyclePath finds an ordered import path from start back to itself
// within the allowed module set, or nil if none exists.
func (g *Graph) findCyclePath(start string, allowed map[string]bool) []string {
	visited := make(map[string]bool)
	path := []string{start}
	if g.dfsFindPath(start, start, visited, allowed, &path) {
		return path
	}
	return nil
}

// dfsFindPath performs DFS to find a path back to the target module.
func (g *Graph) dfsFindPath(current, target string, visited, allowed map[string]bool, path *[]string) bool {
	for _, child := range g.GetChildren(current) {
		if !allowed[child] {
			continue
		}
		if child == target {
			*path = append(*path, target)
			return true
		}
		if visited[child] {
			continue
		}
		visited[child] = true
		*path = append(*path, child)
		if g.dfsFindPath(child, target, visited, allowed, path) {
			return true
		}
		*path = (*path)[:len(*path)-1]
	}
	return false
}
