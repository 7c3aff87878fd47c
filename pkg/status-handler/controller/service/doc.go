// Package service watches services carrying the job correlation label and
// records their cluster IP and port list into the parent KalavaiJob's
// status.services map.
package service
