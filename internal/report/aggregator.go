package report

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chronicle-cli/chronicle/internal/scan"
)

const (
	reportTitleConstant                 = "# Commit Activity Report"
	authorLineTemplateConstant          = "- **Author:** %s"
	periodLineTemplateConstant          = "- **Period:** %s to %s"
	periodLabelSuffixTemplateConstant   = " (%s)"
	generatedLineTemplateConstant       = "- **Generated:** %s"
	runIdentifierLineTemplateConstant   = "- **Run ID:** %s"
	totalCommitsLineConstant            = "- **Total commits:** {{TOTAL_COMMITS}}"
	repositoriesScannedLineConstant     = "- **Repositories scanned:** {{REPOS_SCANNED}}"
	totalCommitsPlaceholderConstant     = "{{TOTAL_COMMITS}}"
	repositoriesPlaceholderConstant     = "{{REPOS_SCANNED}}"
	sectionSeparatorConstant            = "---"
	sectionHeadingTemplateConstant      = "## %s"
	branchLineTemplateConstant          = "Branch: `%s`"
	dirtyBranchSuffixConstant           = " (has changes)"
	commitCountLineTemplateConstant     = "Commits: %d"
	commitBulletTemplateConstant        = "- **%s** | %s | %s"
	completionLineTemplateConstant      = "_Completed at %s_"
	calendarDateLayoutConstant          = "2006-01-02"
	timestampLayoutConstant             = "2006-01-02 15:04:05"
	failedRepositoryWarnMessageConstant = "repository excluded from report"
	logFieldRepositoryNameConstant      = "repository_name"
)

// Metadata carries the report header fields.
type Metadata struct {
	Author        string
	DateStart     time.Time
	DateEnd       time.Time
	PeriodLabel   string
	GeneratedAt   time.Time
	RunIdentifier string
}

// ScanSummary aggregates the terminal results of one scan.
type ScanSummary struct {
	TotalCommits            int
	RepositoriesWithCommits int
	RepositoriesScanned     int
}

// Aggregator merges scan results into a single markdown document.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator constructs an Aggregator.
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger}
}

// Aggregate renders the consolidated report and computes the scan summary.
//
// Results are consumed in sequence order, so two scans over the same inputs
// produce byte-identical documents regardless of completion order. Failed
// repositories are logged and omitted from the body; empty repositories are
// omitted from the body but counted as scanned. The count placeholders in
// the header are patched exactly once after the body is fully rendered.
func (aggregator *Aggregator) Aggregate(scanResults []scan.RepositoryResult, metadata Metadata) (string, ScanSummary) {
	scanSummary := ScanSummary{RepositoriesScanned: len(scanResults)}

	var documentBuilder strings.Builder
	aggregator.renderHeader(&documentBuilder, metadata)

	for _, repositoryResult := range scanResults {
		switch repositoryResult.Status {
		case scan.ResultStatusFailed:
			aggregator.logger.Warn(
				failedRepositoryWarnMessageConstant,
				zap.String(logFieldRepositoryNameConstant, repositoryResult.Repository.Name),
				zap.Error(repositoryResult.FailureReason),
			)
		case scan.ResultStatusHasCommits:
			scanSummary.RepositoriesWithCommits++
			scanSummary.TotalCommits += len(repositoryResult.Commits)
			renderRepositorySection(&documentBuilder, repositoryResult)
		}
	}

	documentBuilder.WriteString(sectionSeparatorConstant + "\n\n")
	documentBuilder.WriteString(fmt.Sprintf(completionLineTemplateConstant, metadata.GeneratedAt.Format(timestampLayoutConstant)) + "\n")

	renderedDocument := documentBuilder.String()
	renderedDocument = strings.Replace(renderedDocument, totalCommitsPlaceholderConstant, fmt.Sprintf("%d", scanSummary.TotalCommits), 1)
	renderedDocument = strings.Replace(renderedDocument, repositoriesPlaceholderConstant, fmt.Sprintf("%d", scanSummary.RepositoriesScanned), 1)

	return renderedDocument, scanSummary
}

func (aggregator *Aggregator) renderHeader(documentBuilder *strings.Builder, metadata Metadata) {
	documentBuilder.WriteString(reportTitleConstant + "\n\n")
	documentBuilder.WriteString(fmt.Sprintf(authorLineTemplateConstant, metadata.Author) + "\n")

	periodLine := fmt.Sprintf(
		periodLineTemplateConstant,
		metadata.DateStart.Format(calendarDateLayoutConstant),
		metadata.DateEnd.Format(calendarDateLayoutConstant),
	)
	if len(metadata.PeriodLabel) > 0 {
		periodLine += fmt.Sprintf(periodLabelSuffixTemplateConstant, metadata.PeriodLabel)
	}
	documentBuilder.WriteString(periodLine + "\n")

	documentBuilder.WriteString(fmt.Sprintf(generatedLineTemplateConstant, metadata.GeneratedAt.Format(timestampLayoutConstant)) + "\n")
	documentBuilder.WriteString(fmt.Sprintf(runIdentifierLineTemplateConstant, metadata.RunIdentifier) + "\n")
	documentBuilder.WriteString(totalCommitsLineConstant + "\n")
	documentBuilder.WriteString(repositoriesScannedLineConstant + "\n\n")
	documentBuilder.WriteString(sectionSeparatorConstant + "\n\n")
}

func renderRepositorySection(documentBuilder *strings.Builder, repositoryResult scan.RepositoryResult) {
	documentBuilder.WriteString(fmt.Sprintf(sectionHeadingTemplateConstant, repositoryResult.Repository.Name) + "\n\n")

	branchLine := fmt.Sprintf(branchLineTemplateConstant, repositoryResult.Branch.ReferenceName)
	if repositoryResult.Branch.IsDirty {
		branchLine += dirtyBranchSuffixConstant
	}
	documentBuilder.WriteString(branchLine + "\n")
	documentBuilder.WriteString(fmt.Sprintf(commitCountLineTemplateConstant, len(repositoryResult.Commits)) + "\n\n")

	for _, commitRecord := range repositoryResult.Commits {
		documentBuilder.WriteString(fmt.Sprintf(
			commitBulletTemplateConstant,
			commitRecord.Hash,
			commitRecord.AuthorTimestamp.Format(timestampLayoutConstant),
			commitRecord.Subject,
		) + "\n")
	}
	documentBuilder.WriteString("\n")
}
