// Package cert manages the TLS material of the admission webhook server.
//
// When the operator runs with the self-signed certificate strategy, this
// package mints an in-cluster CA and server certificate, persists them in a
// Secret so replicas and restarts reuse the same material, writes them to
// the cert directory the webhook server reads, and injects the CA bundle
// into the webhook configurations pointing at the operator's service.
// Certificates are rotated when they approach expiry or stop covering the
// configured service name.
package cert
