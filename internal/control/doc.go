// Package control provides the feedback law driving a process model.
//
// [PID] is the discretized proportional-integral-derivative law
//
//	u_k = clamp(kp * (e_k + Tp/Ti * sum_e + Td/Tp * (e_k - e_{k-1})), u_min, u_max)
//
// with a rectangular-rule integral and a backward-difference derivative.
// The output is hard saturated; the error sum keeps accumulating while the
// output sits on a bound (no anti-windup).
//
// # Usage
//
//	pid := control.NewPID(kp, tpTi, tdTp, uMin, uMax)
//	u := pid.Compute(e, sumE, prevE)
package control
