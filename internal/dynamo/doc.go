// Package dynamo provides the core primitives of the molecular dynamics engine.
//
//   - [Dimensions] and [BoundingBox]: the periodic simulation cell
//   - [SystemState]: positions, velocities, forces and dynamic totals
//   - [Operator]: in-place state transformations, chained with [Compose]
//   - configuration and runtime error sentinels
//
// # Example
//
//	box, _ := dynamo.NewCube(6.0)
//	state := dynamo.NewSystemState(256)
//	dynamo.Apply(state, physics.Boost(v), bc.Apply)
//
// # Thread Safety
//
// A SystemState is owned by a single driver. Nothing in the engine retains a
// pointer to it between calls.
package dynamo
