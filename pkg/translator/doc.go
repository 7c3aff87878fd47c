// Package translator turns a KalavaiJob spec into the child HelmRelease
// descriptor deployed on its behalf.
//
// Translation is a pure build: no API calls are made, and the input spec is
// never mutated. The caller owns submitting the returned descriptor and
// logging the returned warnings.
package translator
