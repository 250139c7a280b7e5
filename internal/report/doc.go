// Package report merges per-repository scan results into one deterministic
// markdown document and writes it atomically into the output directory.
package report
