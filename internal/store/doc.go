// Package store keeps the run history of fixture executions in SQLite.
//
// Each run records the fixture name, a BLAKE3 digest of the fixture file,
// the outcome and the first failure message. Runs are ordered by seq, a
// logical counter assigned on insert, never by wall time, so two histories
// built from the same runs list identically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
