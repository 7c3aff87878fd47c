// Package kalavaijob implements the reconciler for the parent KalavaiJob
// resource.
//
// On create, the job spec is translated into a HelmRelease child carrying a
// freshly minted correlation id; the id is mirrored onto the parent as a
// label and in status. On delete, every child matching the id's label
// selector is removed best-effort, gated by a finalizer so the parent stays
// visible until the cascade completes. A spec change replaces the children
// under a new id (delete-then-recreate), behind an explicit policy toggle.
//
// The engine never mutates children in place after creation: update is
// delete plus recreate, trading update efficiency for correctness.
package kalavaijob
