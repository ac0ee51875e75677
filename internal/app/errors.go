package app

import "fmt"

// InvalidItemsError ends a validate command whose report holds invalid items. The
// report has already been written.
type InvalidItemsError struct {
	Invalid int
	Total   int
}

func (e *InvalidItemsError) Error() string {
	return fmt.Sprintf("%d of %d items are invalid", e.Invalid, e.Total)
}

// ReportedError wraps an error that has already been written to stdout as a JSON
// error document, so Run does not print it again.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	return e.Err
}

type WatchStdinError struct{}

func (e *WatchStdinError) Error() string {
	return "--watch needs at least one input file; standard input cannot be watched"
}

type StreamInputsError struct {
	Count int
}

func (e *StreamInputsError) Error() string {
	return fmt.Sprintf("--stream validates a single input, got %d", e.Count)
}
