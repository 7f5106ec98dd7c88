// Package cli implements the interactive Medi Mate terminal client: a small
// REPL that registers or logs in, uploads consultation audio and browses,
// edits, downloads and deletes the resulting records.
package cli
