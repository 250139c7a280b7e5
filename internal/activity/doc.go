// Package activity hosts the report command: flag and configuration handling,
// username and date-window resolution, and the service that drives discovery,
// the bounded scan, aggregation, and report file placement.
package activity
