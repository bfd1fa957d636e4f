package system

// Scheduler names of the systems in this package. Dependencies between
// systems are declared against these.
const (
	NameInput       = "input"
	NameEvents      = "events"
	NamePlayer      = "player"
	NameMoving      = "moving"
	NameAABB        = "has_aabb"
	NamePosition    = "position"
	NameCameraSnap  = "camera_snap"
	NameCameraChase = "camera_chase"
	NameRender      = "render"
	NameAnimation   = "animation"
	NameCheckpoint  = "checkpoint"
	NameCleanup     = "cleanup"
)
