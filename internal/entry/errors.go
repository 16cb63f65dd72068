package entry

import "fmt"

// ScanError represents an error encountered while scanning path.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// NotCachedError is returned by queries against a path that has no snapshot.
type NotCachedError struct {
	Path string
}

func (e *NotCachedError) Error() string {
	return fmt.Sprintf("%s is not cached", e.Path)
}
