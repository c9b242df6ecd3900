package journey

import (
	"errors"
	"fmt"
)

// ErrPageNotFound is matched by errors.Is for every PageNotFoundError
var ErrPageNotFound = errors.New("page not found")

// PageNotFoundError reports a slug that names neither a page of the form nor the
// check your answers step
type PageNotFoundError struct {
	FormID string
	Slug   string
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page %q not found in form %s", e.Slug, e.FormID)
}

// Is makes errors.Is(err, ErrPageNotFound) hold
func (e *PageNotFoundError) Is(target error) bool {
	return target == ErrPageNotFound
}
