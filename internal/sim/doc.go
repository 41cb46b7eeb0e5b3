// Package sim runs discrete-time closed-loop simulations.
//
// At every step k the engine computes the error against the setpoint of the
// process, derives a clamped PID output and advances the process model:
//
//   - [Engine]: one run of one model (Initializing -> Running -> Terminated)
//   - [Result]: the undecimated records plus run metrics
//   - [Simulate]: validate, run and decimate in one call
//   - [Batch]: independent runs of several configurations in parallel
//
// # Example
//
//	cfg, _ := config.Default(config.ProcessTank)
//	tbl, res, err := sim.Simulate(cfg)
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. Runs share no state, so separate
// engines may run concurrently; [Batch] does exactly that.
package sim
