package scan

import (
	"time"

	"github.com/chronicle-cli/chronicle/internal/discovery"
)

// BranchInfo captures the ref a repository scan targets and whether the working tree is dirty.
type BranchInfo struct {
	ReferenceName string
	IsDirty       bool
}

// CommitRecord is one parsed history entry.
//
// Records keep the reverse-chronological order git emits; nothing downstream
// re-sorts them.
type CommitRecord struct {
	Hash            string
	AuthorTimestamp time.Time
	Subject         string
	Body            string
}

// ScanTask describes one unit of repository work owned by the coordinator until dispatch.
type ScanTask struct {
	Repository    discovery.RepositoryReference
	SequenceIndex int
	Author        string
	DateStart     time.Time
	DateEnd       time.Time
}

// ResultStatus tags the variant of a RepositoryResult.
type ResultStatus string

// Result variants for a completed task.
const (
	ResultStatusHasCommits ResultStatus = "has_commits"
	ResultStatusEmpty      ResultStatus = "empty"
	ResultStatusFailed     ResultStatus = "failed"
)

// RepositoryResult is the terminal outcome of one ScanTask.
//
// Branch and Commits are populated for the HasCommits variant, Branch alone
// for Empty, and FailureReason alone for Failed. Exactly one result exists
// per dispatched task once the coordinator returns.
type RepositoryResult struct {
	Repository    discovery.RepositoryReference
	SequenceIndex int
	Status        ResultStatus
	Branch        BranchInfo
	Commits       []CommitRecord
	FailureReason error
}
