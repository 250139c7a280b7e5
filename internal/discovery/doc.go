// Package discovery locates git repositories beneath a source tree and
// applies repository-name include and exclude filters before scanning.
package discovery
