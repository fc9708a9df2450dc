// Package harness runs YAML-defined convergence scenarios against real
// replicas. A scenario scripts an explicit interleaving of local edits and
// envelope deliveries, then asserts on the final values and cemetery
// counts; the execution trace is compared against golden files so that a
// behavior change in the field shows up as a readable trace diff.
//
// Unlike package sim, which explores random schedules, the harness pins
// one exact schedule per scenario. The two are complementary: sim finds
// divergence, harness documents the interesting interleavings as fixtures.
package harness
