package system

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrDuplicateSystem   = errors.New("duplicate system name")
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrDependencyCycle   = errors.New("dependency cycle")
	ErrPhaseOrder        = errors.New("dependency on a later phase")
)

type node struct {
	name  string
	sys   System
	phase Phase
	reg   int // registration index
	deps  []string

	pos   int // position in the stage's topological order
	preds int // same-phase predecessors
	succs []*node
}

type stage struct {
	phase Phase
	nodes []*node
}

// Builder collects systems and their declared dependencies. Build validates
// the graph once, at startup.
type Builder struct {
	nodes   []*node
	byName  map[string]*node
	errs    []error
	workers int
	log     *zap.Logger
}

func NewBuilder(log *zap.Logger) *Builder {
	return &Builder{
		byName:  make(map[string]*node),
		workers: 4,
		log:     log,
	}
}

// Add registers sys under name; it starts only after every system named in
// deps has completed in the current frame.
func (b *Builder) Add(sys System, name string, deps ...string) *Builder {
	if _, ok := b.byName[name]; ok {
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrDuplicateSystem, name))
		return b
	}
	n := &node{name: name, sys: sys, phase: sys.Phase(), reg: len(b.nodes), deps: deps}
	b.nodes = append(b.nodes, n)
	b.byName[name] = n
	return b
}

// Workers bounds how many systems of one phase run at the same time.
func (b *Builder) Workers(n int) *Builder {
	if n < 1 {
		n = 1
	}
	b.workers = n
	return b
}

// Build resolves dependencies and computes the per-phase execution order.
func (b *Builder) Build() (*Scheduler, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	edges := make(map[*node][]*node, len(b.nodes)) // dep -> dependents
	indeg := make(map[*node]int, len(b.nodes))
	for _, n := range b.nodes {
		for _, d := range n.deps {
			dep, ok := b.byName[d]
			if !ok {
				return nil, fmt.Errorf("%w: %q requires %q", ErrUnknownDependency, n.name, d)
			}
			if dep.phase > n.phase {
				return nil, fmt.Errorf("%w: %q (%s) requires %q (%s)", ErrPhaseOrder, n.name, n.phase, d, dep.phase)
			}
			edges[dep] = append(edges[dep], n)
			indeg[n]++
		}
	}
	if err := checkAcyclic(b.nodes, edges, indeg); err != nil {
		return nil, err
	}

	s := &Scheduler{workers: b.workers, log: b.log}
	for p := Phase(0); p < phaseCount; p++ {
		var members []*node
		for _, n := range b.nodes {
			if n.phase == p {
				members = append(members, n)
			}
		}
		if len(members) == 0 {
			continue
		}
		s.stages = append(s.stages, b.buildStage(p, members, edges))
	}
	return s, nil
}

// checkAcyclic runs Kahn's algorithm over the explicit edges.
func checkAcyclic(nodes []*node, edges map[*node][]*node, indeg map[*node]int) error {
	remaining := make(map[*node]int, len(indeg))
	for k, v := range indeg {
		remaining[k] = v
	}
	queue := make([]*node, 0, len(nodes))
	for _, n := range nodes {
		if remaining[n] == 0 {
			queue = append(queue, n)
		}
	}
	visited := 0
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visited++
		for _, m := range edges[n] {
			remaining[m]--
			if remaining[m] == 0 {
				queue = append(queue, m)
			}
		}
	}
	if visited == len(nodes) {
		return nil
	}
	var stuck []string
	for _, n := range nodes {
		if remaining[n] > 0 {
			stuck = append(stuck, n.name)
		}
	}
	sort.Strings(stuck)
	return fmt.Errorf("%w among %s", ErrDependencyCycle, strings.Join(stuck, ", "))
}

// buildStage orders one phase. Conflicting systems with no declared path
// between them are ordered by registration, so the outcome of a frame never
// depends on which goroutine happened to win.
func (b *Builder) buildStage(p Phase, members []*node, edges map[*node][]*node) *stage {
	local := make(map[*node]int, len(members))
	for i, n := range members {
		local[n] = i
	}
	size := len(members)
	adj := make([][]bool, size)
	reach := make([][]bool, size)
	for i := range members {
		adj[i] = make([]bool, size)
		reach[i] = make([]bool, size)
	}
	for i, n := range members {
		for _, m := range edges[n] {
			if j, ok := local[m]; ok {
				adj[i][j] = true
			}
		}
	}
	// transitive closure; phases hold a handful of systems
	for i := range members {
		copy(reach[i], adj[i])
	}
	for k := 0; k < size; k++ {
		for i := 0; i < size; i++ {
			if !reach[i][k] {
				continue
			}
			for j := 0; j < size; j++ {
				if reach[k][j] {
					reach[i][j] = true
				}
			}
		}
	}

	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if reach[i][j] || reach[j][i] {
				continue
			}
			if !members[i].sys.Access().Conflicts(members[j].sys.Access()) {
				continue
			}
			adj[i][j] = true
			for a := 0; a < size; a++ {
				if a != i && !reach[a][i] {
					continue
				}
				reach[a][j] = true
				for c := 0; c < size; c++ {
					if reach[j][c] {
						reach[a][c] = true
					}
				}
			}
			b.log.Debug("implicit system ordering",
				zap.Stringer("phase", p),
				zap.String("before", members[i].name),
				zap.String("after", members[j].name))
		}
	}

	// Kahn with registration order as the tie-break.
	indeg := make([]int, size)
	for i := range members {
		for j := range members {
			if adj[i][j] {
				indeg[j]++
			}
		}
	}
	st := &stage{phase: p}
	done := make([]bool, size)
	for len(st.nodes) < size {
		for i, n := range members {
			if done[i] || indeg[i] > 0 {
				continue
			}
			done[i] = true
			n.pos = len(st.nodes)
			n.preds = 0
			n.succs = nil
			st.nodes = append(st.nodes, n)
			for j := range members {
				if adj[i][j] {
					indeg[j]--
				}
			}
			break
		}
	}
	for i, n := range members {
		for j, m := range members {
			if adj[i][j] {
				n.succs = append(n.succs, m)
				m.preds++
			}
		}
	}
	return st
}
