package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

const (
	gitMetadataDirectoryNameConstant   = ".git"
	matchEverythingPatternConstant     = "*"
	invalidRootMessageTemplateConstant = "source path %q is not an existing directory"
	patternErrorTemplateConstant       = "invalid repository name pattern %q: %w"
)

// ErrInvalidRoot indicates the discovery root does not exist or is not a directory.
var ErrInvalidRoot = errors.New("invalid discovery root")

// RepositoryReference identifies one discovered repository.
type RepositoryReference struct {
	Path string
	Name string
}

// Filters restricts discovery to repositories whose basename matches the configured globs.
type Filters struct {
	IncludePatterns []string
	ExcludePatterns []string
}

// FilesystemRepositoryDiscoverer locates git repositories on disk.
type FilesystemRepositoryDiscoverer struct{}

// NewFilesystemRepositoryDiscoverer constructs a repository discoverer backed by filepath.WalkDir.
func NewFilesystemRepositoryDiscoverer() *FilesystemRepositoryDiscoverer {
	return &FilesystemRepositoryDiscoverer{}
}

// DiscoverRepositories walks the root and returns filtered repositories in lexicographic path order.
//
// A directory counts as a repository when it contains a .git entry; the walk
// does not descend into repositories, so nested checkouts inside a working
// tree are not reported. Repeated runs over an unchanged tree yield the
// identical ordered sequence.
func (discoverer *FilesystemRepositoryDiscoverer) DiscoverRepositories(rootPath string, filters Filters) ([]RepositoryReference, error) {
	rootInfo, statError := os.Stat(rootPath)
	if statError != nil || !rootInfo.IsDir() {
		return nil, fmt.Errorf(invalidRootMessageTemplateConstant+": %w", rootPath, ErrInvalidRoot)
	}

	if validationError := validatePatterns(filters.IncludePatterns); validationError != nil {
		return nil, validationError
	}
	if validationError := validatePatterns(filters.ExcludePatterns); validationError != nil {
		return nil, validationError
	}

	seen := make(map[string]struct{})
	var repositories []RepositoryReference

	walkError := filepath.WalkDir(rootPath, func(entryPath string, directoryEntry fs.DirEntry, entryError error) error {
		if entryError != nil {
			return nil
		}

		if directoryEntry.Name() != gitMetadataDirectoryNameConstant {
			return nil
		}

		repositoryPath := filepath.Dir(entryPath)
		if _, alreadySeen := seen[repositoryPath]; alreadySeen {
			if directoryEntry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		seen[repositoryPath] = struct{}{}

		repositoryName := filepath.Base(repositoryPath)
		if matchesFilters(repositoryName, filters) {
			repositories = append(repositories, RepositoryReference{Path: repositoryPath, Name: repositoryName})
		}

		if directoryEntry.IsDir() {
			return fs.SkipDir
		}
		return nil
	})
	if walkError != nil {
		return nil, walkError
	}

	sort.Slice(repositories, func(firstIndex int, secondIndex int) bool {
		return repositories[firstIndex].Path < repositories[secondIndex].Path
	})
	return repositories, nil
}

func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if _, matchError := path.Match(pattern, ""); matchError != nil {
			return fmt.Errorf(patternErrorTemplateConstant, pattern, matchError)
		}
	}
	return nil
}

func matchesFilters(repositoryName string, filters Filters) bool {
	includePatterns := filters.IncludePatterns
	if len(includePatterns) == 0 {
		includePatterns = []string{matchEverythingPatternConstant}
	}

	included := false
	for _, includePattern := range includePatterns {
		if matched, _ := path.Match(includePattern, repositoryName); matched {
			included = true
			break
		}
	}
	if !included {
		return false
	}

	for _, excludePattern := range filters.ExcludePatterns {
		if matched, _ := path.Match(excludePattern, repositoryName); matched {
			return false
		}
	}
	return true
}
