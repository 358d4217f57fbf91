package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownHeaderLevel indicates a header level without a configured style.
	ErrUnknownHeaderLevel = errors.New("unknown header level")
	// ErrTooManyColumns indicates a table wider than the usable page width.
	ErrTooManyColumns = errors.New("too many table columns")
	// ErrNoColumns indicates a table without any column.
	ErrNoColumns = errors.New("table has no columns")
	// ErrTitleTooLong indicates a project title at or over the title limit.
	ErrTitleTooLong = errors.New("project title too long")
	// ErrTitlePageNotFirst indicates a title page requested after content.
	ErrTitlePageNotFirst = errors.New("title page must be the first page")
	// ErrFigureTooTall indicates a figure that cannot fit on an empty page.
	ErrFigureTooTall = errors.New("figure taller than a page")
	// ErrNoPages indicates a save of a document nothing was written to.
	ErrNoPages = errors.New("document has no pages")
	// ErrBuilt indicates content added after the document was built.
	ErrBuilt = errors.New("document already built")
)

// ConfigError reports an invalid configuration value or style key.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error (%s): %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// LayoutError reports content that cannot be placed. Operations returning a
// LayoutError have not drawn anything.
type LayoutError struct {
	Op  string
	Msg string
	Err error
}

func (e *LayoutError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("layout error in %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("layout error in %s: %v: %s", e.Op, e.Err, e.Msg)
}

func (e *LayoutError) Unwrap() error { return e.Err }

// ResourceError reports an image reference that could not be resolved, read
// or decoded.
type ResourceError struct {
	Ref string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource %q: %v", e.Ref, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

func newConfigError(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Err: err}
}

func newLayoutError(op string, err error, format string, args ...any) *LayoutError {
	return &LayoutError{Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}
