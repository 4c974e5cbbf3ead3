// Package physics provides the pair potentials and the state measurements and
// transformations built on them.
//
// Force laws implement [PairwiseForce]:
//
//   - [LennardJones]: 12-6 potential with a hard cutoff (default)
//   - [SplinedLennardJones]: smoothed so potential and virial vanish at the cutoff
//   - [ZeroForce]: no interaction, for ballistic checks
//
// Transformations return a [dynamo.Operator] and may be chained:
//
//	dynamo.Apply(state,
//	    physics.SetMomentum(r3.Vec{}),
//	    physics.SetTemperature(0.8, 1),
//	)
//
// # Units
//
// Everything is in Lennard-Jones reduced units: epsilon, sigma, particle mass
// and Boltzmann's constant are all one.
package physics
