// Package health derives crash and restart diagnostics from pod container
// state transitions.
//
// The analyzer is pure: it folds one pod snapshot, plus whatever health
// block is already recorded on the parent, into a new health block. Crash
// history is ring-bounded to the ten most recent events per pod; total
// restarts is a live gauge recomputed from each snapshot, never a counter
// accumulated across events.
package health
