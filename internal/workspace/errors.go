package workspace

import "errors"

// ErrorKind classifies path resolution failures.
type ErrorKind int

const (
	// KindInvalidArgument means a required path argument was missing.
	KindInvalidArgument ErrorKind = iota
	// KindNotFound means the path or its parent does not exist on disk.
	KindNotFound
	// KindNotADirectory means the workspace root resolves to a non-directory.
	KindNotADirectory
	// KindPathEscape means the resolved path lies outside the workspace root.
	KindPathEscape
	// KindIO covers underlying filesystem failures during resolution.
	KindIO
)

// String returns string representation of the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindNotADirectory:
		return "not_a_directory"
	case KindPathEscape:
		return "path_escape"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// PathError is a tagged resolution failure. The message is what operation
// results surface to the UI; the kind keeps error handling exhaustive.
type PathError struct {
	Kind ErrorKind
	Path string
	Msg  string
}

func (e *PathError) Error() string {
	return e.Msg
}

func pathError(kind ErrorKind, path, msg string) *PathError {
	return &PathError{Kind: kind, Path: path, Msg: msg}
}

// KindOf extracts the ErrorKind from err, returning KindIO for errors
// that did not originate in path resolution.
func KindOf(err error) ErrorKind {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindIO
}
