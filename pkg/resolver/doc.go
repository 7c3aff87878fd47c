// Package resolver maps child resource events back to their parent
// KalavaiJob through the correlation id.
//
// Every status feed (HelmRelease conditions, pod status, service ports)
// shares the same lookup discipline: extract the correlation id from the
// event object's label, list KalavaiJobs by the jobId selector, and treat
// more than zero matches as healthy. A correlation id is expected to map to
// exactly one parent; multiple matches indicate a bookkeeping bug and are
// logged loudly, with the first match used defensively. Zero matches is a
// benign race (the parent is not yet visible, or already deleted) and is
// reported as not-found, never as an error.
package resolver
