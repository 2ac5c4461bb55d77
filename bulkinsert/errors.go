package bulkinsert

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSink is returned when a flush is attempted without a sink
	ErrNoSink = errors.New("bulk insert flush has no sink")
)

// FlushError is returned when the sink fails to execute a flush.
// The drained records are not re-queued; Statements holds exactly what was
// sent so the caller may re-submit it with AddRawStatement.
type FlushError struct {
	FlushID    string
	Records    int
	Statements []string
	Err        error
}

func (e *FlushError) Error() string {
	return fmt.Sprintf("flush %s: %d statements (%d records) not persisted: %v",
		e.FlushID, len(e.Statements), e.Records, e.Err)
}

func (e *FlushError) Unwrap() error {
	return e.Err
}
