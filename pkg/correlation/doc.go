// Package correlation generates and validates the job correlation id and
// owns the label keys binding every resource in the ownership chain.
//
// A correlation id is an opaque UUID minted once per successful create. It
// is stamped as a label on every child resource and mirrored onto the parent
// KalavaiJob, both as a label (for indexed lookup) and in status.jobId.
// Children are discoverable solely via label-selector match on the id,
// never by name matching.
package correlation
