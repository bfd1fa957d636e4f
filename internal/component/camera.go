package component

// SnapCamera marks the entity the camera follows exactly.
type SnapCamera struct{}

// ChaseCamera marks an entity that is slaved to the camera location.
type ChaseCamera struct{}
