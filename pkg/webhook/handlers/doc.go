// Package handlers implements the admission control logic for KalavaiJobs.
//
// It contains implementations of the controller-runtime admission
// interfaces for two purposes:
//
//  1. Mutation (KalavaiJobDefaulter): intercepts CREATE and UPDATE
//     requests to make implicit defaults (chart repository, selector
//     combination mode) explicit on the stored object. The defaults are
//     the same constants the translator falls back to, so objects
//     admitted while the webhook is down still translate identically.
//
//  2. Validation (KalavaiJobValidator): enforces the semantic rules that
//     cannot be expressed in the OpenAPI schema, such as the chart values
//     being a decodable JSON object.
package handlers
