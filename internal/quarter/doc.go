// Package quarter converts quarter numbers into inclusive calendar date
// ranges, supporting absolute quarters of the current year and negative
// offsets stepping backwards from the quarter in progress.
package quarter
