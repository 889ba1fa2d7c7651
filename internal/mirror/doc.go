// Package mirror publishes copies of the written feed to secondary locations.
//
// Mirrors are best-effort: a failing publisher is logged and the remaining
// publishers still run. The primary output file is never affected by a mirror
// failure.
package mirror
