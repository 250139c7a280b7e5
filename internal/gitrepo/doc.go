// Package gitrepo contains helpers for interrogating Git repositories.
//
// It exposes RepositoryManager for inspecting branches, remote HEAD
// references, and working-tree status on behalf of the scanning services.
package gitrepo
