// Package scheduler drives the automatic execution of download schedules.
// A single background goroutine polls storage on a fixed 60-second cadence,
// selects schedules whose next occurrence falls within a one-minute
// tolerance of the poll instant, submits one job per due schedule in
// sequence, and writes an audit record for every attempt.
//
// Bookkeeping (last execution time, execution counter, cached next
// occurrence) is advanced after every attempt, success or failure, so a due
// occurrence fires at most once per poll cycle in a single process. If the
// process dies between job submission and the bookkeeping write, that
// occurrence can fire again after restart: the engine is at-least-once
// across crashes, not exactly-once.
package scheduler
