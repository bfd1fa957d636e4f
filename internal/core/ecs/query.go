package ecs

// Each2 iterates over entities that have both component A and B.
// It iterates over the smaller store in its dense order and probes the other.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for i, id := range sa.ids {
			if b, ok := sb.Get(id); ok {
				fn(id, sa.data[i], b)
			}
		}
		return
	}
	for i, id := range sb.ids {
		if a, ok := sa.Get(id); ok {
			fn(id, a, sb.data[i])
		}
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](sa *Store[A], sb *Store[B], sc *Store[C], fn func(EntityID, *A, *B, *C)) {
	ids := smallest(sa.ids, sb.ids, sc.ids)
	for _, id := range ids {
		a, ok := sa.Get(id)
		if !ok {
			continue
		}
		b, ok := sb.Get(id)
		if !ok {
			continue
		}
		c, ok := sc.Get(id)
		if !ok {
			continue
		}
		fn(id, a, b, c)
	}
}

// Each4 iterates over entities that have components A, B, C and D.
func Each4[A, B, C, D any](sa *Store[A], sb *Store[B], sc *Store[C], sd *Store[D], fn func(EntityID, *A, *B, *C, *D)) {
	ids := smallest(sa.ids, sb.ids, sc.ids, sd.ids)
	for _, id := range ids {
		a, ok := sa.Get(id)
		if !ok {
			continue
		}
		b, ok := sb.Get(id)
		if !ok {
			continue
		}
		c, ok := sc.Get(id)
		if !ok {
			continue
		}
		d, ok := sd.Get(id)
		if !ok {
			continue
		}
		fn(id, a, b, c, d)
	}
}

// smallest picks the shortest id list; ties go to the earliest argument so
// the driving store is the same every frame for the same populations.
func smallest(lists ...[]EntityID) []EntityID {
	best := lists[0]
	for _, l := range lists[1:] {
		if len(l) < len(best) {
			best = l
		}
	}
	return best
}
