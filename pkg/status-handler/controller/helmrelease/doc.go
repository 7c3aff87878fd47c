// Package helmrelease watches HelmReleases carrying the job correlation
// label and mirrors their condition lists into the parent KalavaiJob's
// status.releases map. Only condition-list changes reach the reconciler;
// all other HelmRelease churn is filtered at the watch.
package helmrelease
