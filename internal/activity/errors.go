package activity

import (
	"errors"

	"github.com/chronicle-cli/chronicle/internal/discovery"
)

const (
	gitToolMissingMessageConstant      = "git executable not found in PATH"
	usernameUnresolvedMessageConstant  = "author username could not be resolved from flag, configuration, or git config"
	noRepositoriesFoundMessageConstant = "no git repositories found under the source path"
	incompleteDateRangeMessageConstant = "dateStart and dateEnd must be provided together"
	invalidDateOrderingMessageConstant = "dateStart must not be after dateEnd"
)

// Fatal sentinels surfaced before any report output is produced.
var (
	ErrGitToolMissing      = errors.New(gitToolMissingMessageConstant)
	ErrUsernameUnresolved  = errors.New(usernameUnresolvedMessageConstant)
	ErrNoRepositoriesFound = errors.New(noRepositoriesFoundMessageConstant)
	ErrIncompleteDateRange = errors.New(incompleteDateRangeMessageConstant)
	ErrInvalidDateOrdering = errors.New(invalidDateOrderingMessageConstant)
)

// ErrInvalidRoot reports a missing or non-directory source path.
var ErrInvalidRoot = discovery.ErrInvalidRoot
