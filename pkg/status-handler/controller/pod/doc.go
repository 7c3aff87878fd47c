// Package pod watches pods carrying the job correlation label and records
// their phase, node assignment, conditions, restart counts, and derived
// crash diagnostics into the parent KalavaiJob's status.pods map.
package pod
