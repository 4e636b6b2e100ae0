package tools

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrStoreKey represents a missing entry in a store.
type ErrStoreKey struct {
	Store string
	Key   string
}

func (e *ErrStoreKey) Error() string {
	return fmt.Sprintf("store %q has no entry %q", e.Store, e.Key)
}

// ErrStoreType represents an entry present in a store with an
// unexpected type.
type ErrStoreType struct {
	Store string
	Key   string
	Want  string
	Got   string
}

func (e *ErrStoreType) Error() string {
	return fmt.Sprintf("store %q entry %q has type %s, want %s", e.Store, e.Key, e.Got, e.Want)
}

// ErrLegendNotFound represents a geometry file without a legend line.
type ErrLegendNotFound struct {
	Filename string
}

func (e *ErrLegendNotFound) Error() string {
	return fmt.Sprintf("no legend line found in geometry file %q", e.Filename)
}

// ErrBadRecord represents a malformed data line in an input file.
type ErrBadRecord struct {
	Filename string
	Line     int
	Err      error
}

func (e *ErrBadRecord) Error() string {
	return fmt.Sprintf("bad record at %s:%d: %v", e.Filename, e.Line, e.Err)
}

func (e *ErrBadRecord) Unwrap() error { return e.Err }

// ErrCreateTree represents an error when creating an output tree.
type ErrCreateTree struct {
	TreeName string
	Err      error
}

func (e *ErrCreateTree) Error() string {
	return fmt.Sprintf("error creating tree %q: %v", e.TreeName, e.Err)
}

func (e *ErrCreateTree) Unwrap() error { return e.Err }
