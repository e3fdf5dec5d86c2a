package orchestrator

// resolveOrder computes a deterministic total initialization order for the
// tier: every feature appears after all of its registered dependencies.
//
// The walk is a depth-first visit over the descriptor map with explicit
// visiting/visited sets (no recursion on live object graphs), so cycle
// detection and the feature named in the error stay deterministic. Ties are
// broken by registration order. Dependencies on unregistered IDs are ignored
// here; they surface as DependencyError when the feature is about to start.
func resolveOrder(reg *Registry) ([]string, error) {
	ids := reg.ids()
	order := make([]string, 0, len(ids))
	visited := make(map[string]bool, len(ids))
	visiting := make(map[string]bool, len(ids))

	var visit func(id string) error
	visit = func(id string) error {
		if visited[id] {
			return nil
		}
		if visiting[id] {
			return &CycleError{Tier: reg.tier, FeatureID: id}
		}
		visiting[id] = true

		e, _ := reg.lookup(id)
		for _, dep := range e.desc.Dependencies {
			if _, ok := reg.lookup(dep); !ok {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		delete(visiting, id)
		visited[id] = true
		order = append(order, id)
		return nil
	}

	for _, id := range ids {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// batchGroup is one batch number together with its features in resolver
// order.
type batchGroup struct {
	number int
	ids    []string
}

// groupBatches coalesces the resolver's total order into the declared batch
// numbers. Batches run in ascending numeric order; within a batch, features
// keep their topological order.
func groupBatches(reg *Registry, order []string) []batchGroup {
	byNumber := make(map[int]*batchGroup)
	numbers := make([]int, 0)

	for _, id := range order {
		e, _ := reg.lookup(id)
		g, ok := byNumber[e.desc.Batch]
		if !ok {
			g = &batchGroup{number: e.desc.Batch}
			byNumber[e.desc.Batch] = g
			numbers = append(numbers, e.desc.Batch)
		}
		g.ids = append(g.ids, id)
	}

	// Insertion sort; tiers carry a handful of batches at most.
	for i := 1; i < len(numbers); i++ {
		for j := i; j > 0 && numbers[j] < numbers[j-1]; j-- {
			numbers[j], numbers[j-1] = numbers[j-1], numbers[j]
		}
	}

	groups := make([]batchGroup, 0, len(numbers))
	for _, n := range numbers {
		groups = append(groups, *byNumber[n])
	}
	return groups
}
