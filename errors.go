package megamerge

import (
	"errors"
	"fmt"

	"github.com/hupe1980/megamerge/internal/resource"
	"github.com/hupe1980/megamerge/matrix"
)

var (
	// ErrNilMatrix is returned when New receives a nil matrix.
	ErrNilMatrix = errors.New("matrix must not be nil")

	// ErrMemoryLimitExceeded is returned when the owned interval copies would
	// exceed the limit configured with WithMemoryLimit.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")
)

// ErrInvalidMatrix indicates that an input matrix cannot be read as intervals.
//
// The underlying shape error, if any, is available via errors.Unwrap.
type ErrInvalidMatrix struct {
	// Name is "segmentation" or "data".
	Name    string
	Rows    int
	Columns int
	cause   error
}

func (e *ErrInvalidMatrix) Error() string {
	return fmt.Sprintf("invalid %s matrix: %dx%d, want 2 columns", e.Name, e.Rows, e.Columns)
}

func (e *ErrInvalidMatrix) Unwrap() error { return e.cause }

func translateError(name string, err error) error {
	if err == nil {
		return nil
	}

	var se *matrix.ShapeError
	if errors.As(err, &se) {
		return &ErrInvalidMatrix{Name: name, Rows: se.Rows, Columns: se.Cols, cause: err}
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %s: %w", ErrMemoryLimitExceeded, name, err)
	}

	return err
}
