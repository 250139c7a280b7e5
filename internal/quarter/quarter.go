package quarter

import (
	"errors"
	"fmt"
	"time"
)

const (
	invalidQuarterMessageConstant       = "quarter number must be a non-zero integer between -4 and 4"
	quarterLabelTemplateConstant        = "Q%d %d"
	monthsPerQuarterConstant            = 3
	quartersPerYearConstant             = 4
	minimumQuarterNumberConstant        = -4
	maximumQuarterNumberConstant        = 4
	lastDayOffsetInDaysConstant         = -1
	firstMonthOffsetWithinQuarterConstant = 1
)

// ErrInvalidQuarter indicates the quarter number is zero or outside [-4, 4].
var ErrInvalidQuarter = errors.New(invalidQuarterMessageConstant)

// Range describes a resolved calendar quarter as an inclusive date window.
type Range struct {
	Year           int
	Quarter        int
	DateStart      time.Time
	DateEnd        time.Time
	FutureFallback bool
}

// Label renders the quarter in Q<number> <year> form.
func (quarterRange Range) Label() string {
	return fmt.Sprintf(quarterLabelTemplateConstant, quarterRange.Quarter, quarterRange.Year)
}

// CurrentQuarter returns the 1-based quarter containing the reference date.
func CurrentQuarter(referenceDate time.Time) int {
	return (int(referenceDate.Month())-1)/monthsPerQuarterConstant + 1
}

// Resolve converts a quarter number into an inclusive date range relative to the reference date.
//
// Positive numbers name a quarter of the reference year; a quarter that has
// not started yet resolves to the same quarter of the previous year with
// FutureFallback set. Negative numbers step backwards from the current
// quarter, so -1 is the immediately preceding quarter. Zero is invalid.
func Resolve(quarterNumber int, referenceDate time.Time) (Range, error) {
	if quarterNumber == 0 || quarterNumber < minimumQuarterNumberConstant || quarterNumber > maximumQuarterNumberConstant {
		return Range{}, ErrInvalidQuarter
	}

	referenceYear := referenceDate.Year()
	currentQuarter := CurrentQuarter(referenceDate)

	resolvedYear := referenceYear
	resolvedQuarter := quarterNumber
	futureFallback := false

	if quarterNumber > 0 {
		if quarterNumber > currentQuarter {
			resolvedYear--
			futureFallback = true
		}
	} else {
		absoluteQuarterIndex := referenceYear*quartersPerYearConstant + (currentQuarter - 1) + quarterNumber
		resolvedYear = absoluteQuarterIndex / quartersPerYearConstant
		resolvedQuarter = absoluteQuarterIndex%quartersPerYearConstant + 1
	}

	quarterStartMonth := time.Month((resolvedQuarter-1)*monthsPerQuarterConstant + firstMonthOffsetWithinQuarterConstant)
	dateStart := time.Date(resolvedYear, quarterStartMonth, 1, 0, 0, 0, 0, time.UTC)
	dateEnd := dateStart.AddDate(0, monthsPerQuarterConstant, 0).AddDate(0, 0, lastDayOffsetInDaysConstant)

	return Range{
		Year:           resolvedYear,
		Quarter:        resolvedQuarter,
		DateStart:      dateStart,
		DateEnd:        dateEnd,
		FutureFallback: futureFallback,
	}, nil
}
