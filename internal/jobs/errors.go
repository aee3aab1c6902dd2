package jobs

import "fmt"

// FindingsError reports a run that completed but left offenses behind. It is
// the build verdict, not a failure of the run itself.
type FindingsError struct {
	Count       int
	OutsideDiff int
	ExitCode    int
}

func (e *FindingsError) Error() string {
	return fmt.Sprintf("%d offenses found", e.Count)
}
