package component

// Sequence is a restartable cursor over animation frame indices. Next
// returns false once the sequence is exhausted; infinite sequences never
// return false.
type Sequence interface {
	Next() (int, bool)
	Reset()
}

// Cycle returns the infinite sequence 1, 2, ..., n-1, 0, 1, ... for an
// animation currently showing frame 0.
func Cycle(n int) Sequence {
	return &cycle{n: n}
}

type cycle struct {
	n, cur int
}

func (c *cycle) Next() (int, bool) {
	if c.n <= 0 {
		return 0, false
	}
	c.cur = (c.cur + 1) % c.n
	return c.cur, true
}

func (c *cycle) Reset() { c.cur = 0 }

// Once plays 1..n once. Its last value is n itself, which takes the
// animation out of range so the entity stops drawing; then it is exhausted.
func Once(n int) Sequence {
	return &once{n: n}
}

type once struct {
	n, cur int
}

func (o *once) Next() (int, bool) {
	if o.cur >= o.n {
		return o.cur, false
	}
	o.cur++
	return o.cur, true
}

func (o *once) Reset() { o.cur = 0 }

// Frames walks an explicit list of frame indices, wrapping around when loop
// is set.
func Frames(indices []int, loop bool) Sequence {
	return &frames{indices: append([]int(nil), indices...), loop: loop}
}

type frames struct {
	indices []int
	loop    bool
	next    int
}

func (f *frames) Next() (int, bool) {
	if len(f.indices) == 0 {
		return 0, false
	}
	if f.next >= len(f.indices) {
		if !f.loop {
			return f.indices[len(f.indices)-1], false
		}
		f.next = 0
	}
	v := f.indices[f.next]
	f.next++
	return v, true
}

func (f *frames) Reset() { f.next = 0 }
