// Package process provides the physical process models a controller drives.
//
// A [Model] turns the controller output u_k and the previous state into the
// next state. Two variants exist:
//
//   - [Tank]: liquid reservoir level with controlled inflow and free outflow
//   - [Turbine]: hydro turbine power driven through a valve cross-section
//
// Run-scoped constants are precomputed once into [Coefficients]; every
// division whose denominator may legitimately be zero yields 0.
package process
