// Package pipeline orchestrates a single publish run through its linear
// stages: detect, build, package, publish. Control flow is strictly
// sequential and stop-on-first-error; the only terminal states are Done and
// Failed. Stage transitions are announced on a synchronous event bus and
// optionally persisted to the run event store.
package pipeline
