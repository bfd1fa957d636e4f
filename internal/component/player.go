package component

// PlayerControlled marks entities steered by PlayerInput.
type PlayerControlled struct{}

// Named carries the spawn name from the level file. Checkpoints key entity
// state by it, since entity ids are not stable across runs.
type Named struct {
	Name string
}
