// Package scan executes repository history scans: it resolves the branch each
// repository should be queried on, extracts and parses commit history within a
// date window, and coordinates the per-repository work across a bounded pool
// of workers with serialized progress reporting.
package scan
