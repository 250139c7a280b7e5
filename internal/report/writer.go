package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	reportFileNameTemplateConstant    = "%sx%s.%s.md"
	temporaryFilePatternTemplateConst = ".%s.tmp-*"
	outputDirectoryPermissionConstant = 0o755
	createDirectoryErrorTemplate      = "create output directory %s: %w"
	stageReportErrorTemplateConstant  = "stage report file: %w"
	writeReportErrorTemplateConstant  = "write report file: %w"
	finalizeReportErrorTemplate       = "finalize report file %s: %w"
)

// BuildReportFileName derives the report file name from the date window and author.
func BuildReportFileName(dateStart time.Time, dateEnd time.Time, username string) string {
	return fmt.Sprintf(
		reportFileNameTemplateConstant,
		dateStart.Format(calendarDateLayoutConstant),
		dateEnd.Format(calendarDateLayoutConstant),
		username,
	)
}

// WriteReportFile atomically places the rendered document under the output directory.
//
// The document is staged into a temporary file beside the final location and
// renamed into place, so a failed run never leaves a partial report behind.
// The resolved report path is returned.
func WriteReportFile(outputDirectory string, fileName string, document string) (string, error) {
	if directoryError := os.MkdirAll(outputDirectory, outputDirectoryPermissionConstant); directoryError != nil {
		return "", fmt.Errorf(createDirectoryErrorTemplate, outputDirectory, directoryError)
	}

	temporaryFile, temporaryFileError := os.CreateTemp(outputDirectory, fmt.Sprintf(temporaryFilePatternTemplateConst, fileName))
	if temporaryFileError != nil {
		return "", fmt.Errorf(stageReportErrorTemplateConstant, temporaryFileError)
	}
	temporaryFilePath := temporaryFile.Name()

	if _, writeError := temporaryFile.WriteString(document); writeError != nil {
		temporaryFile.Close()
		os.Remove(temporaryFilePath)
		return "", fmt.Errorf(writeReportErrorTemplateConstant, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		os.Remove(temporaryFilePath)
		return "", fmt.Errorf(writeReportErrorTemplateConstant, closeError)
	}

	reportPath := filepath.Join(outputDirectory, fileName)
	if renameError := os.Rename(temporaryFilePath, reportPath); renameError != nil {
		os.Remove(temporaryFilePath)
		return "", fmt.Errorf(finalizeReportErrorTemplate, reportPath, renameError)
	}

	return reportPath, nil
}
