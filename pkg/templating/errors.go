package templating

import (
	"context"
	"errors"
	"fmt"
)

// FetchError represents a failure to load a template document.
// This error occurs when the fetcher fails (for example a non-success HTTP
// response) or the fetched markup cannot be parsed.
type FetchError struct {
	// Path is the document path that was requested
	Path string

	// Cause is the underlying fetcher or parser error
	Cause error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch template document '%s': %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// NotFoundError represents a request for a template that its document does
// not define.
type NotFoundError struct {
	// Path is the document path that was searched
	Path string

	// Name is the requested template name (empty for the default template)
	Name string

	// Available lists the template names the document does define
	Available []string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	name := e.Name
	if name == "" {
		name = "(default)"
	}
	return fmt.Sprintf("template '%s' not found in '%s'", name, e.Path)
}

// ExpressionError represents a failure of a function invoked while
// resolving an expression. Unresolvable paths are not errors.
type ExpressionError struct {
	// Expression is the dotted path being resolved
	Expression string

	// Cause is the error returned by the function
	Cause error
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	return fmt.Sprintf("failed to resolve expression '%s': %v", e.Expression, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *ExpressionError) Unwrap() error {
	return e.Cause
}

// IncludeDepthError represents data-fly-include nesting beyond the
// configured limit, usually a template including itself.
type IncludeDepthError struct {
	// Template is the include that exceeded the limit
	Template TemplateRef

	// Depth is the limit that was reached
	Depth int
}

// Error implements the error interface.
func (e *IncludeDepthError) Error() string {
	return fmt.Sprintf("include of '%s' exceeds maximum depth %d", e.Template, e.Depth)
}

// RenderError represents a failed render of a top-level template.
type RenderError struct {
	// Template is the template that failed to render
	Template TemplateRef

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *RenderError) Error() string {
	return fmt.Sprintf("failed to render template '%s': %v", e.Template, e.Cause)
}

// Unwrap returns the underlying cause for error unwrapping.
func (e *RenderError) Unwrap() error {
	return e.Cause
}

// NewFetchError creates a FetchError for a document that could not be loaded.
func NewFetchError(path string, cause error) *FetchError {
	return &FetchError{
		Path:  path,
		Cause: cause,
	}
}

// NewNotFoundError creates a NotFoundError with the names the document
// does define.
func NewNotFoundError(path, name string, available []string) *NotFoundError {
	return &NotFoundError{
		Path:      path,
		Name:      name,
		Available: available,
	}
}

// NewExpressionError creates an ExpressionError for a failed function call.
func NewExpressionError(expression string, cause error) *ExpressionError {
	return &ExpressionError{
		Expression: expression,
		Cause:      cause,
	}
}

// NewIncludeDepthError creates an IncludeDepthError.
func NewIncludeDepthError(ref TemplateRef, depth int) *IncludeDepthError {
	return &IncludeDepthError{
		Template: ref,
		Depth:    depth,
	}
}

// NewRenderError creates a RenderError wrapping cause.
func NewRenderError(ref TemplateRef, cause error) *RenderError {
	return &RenderError{
		Template: ref,
		Cause:    cause,
	}
}

// ErrorKind classifies a render error for metrics labels: "fetch",
// "not_found", "expression", "include_depth", "canceled" or "other".
// It returns "" for a nil error.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}

	var fetchErr *FetchError
	var notFoundErr *NotFoundError
	var exprErr *ExpressionError
	var depthErr *IncludeDepthError

	switch {
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &notFoundErr):
		return "not_found"
	case errors.As(err, &depthErr):
		return "include_depth"
	case errors.As(err, &exprErr):
		return "expression"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
