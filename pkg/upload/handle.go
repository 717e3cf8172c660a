// Package upload models user-selected files as opaque handles. The engine
// never reads file bytes; the byte source is resolved by the submission
// collaborator when it builds the multipart request.
package upload

import "io"

// Handle references one selected file. Size and MIME are supplied by the
// picker at selection time and are what the engine screens against the
// template's file policy.
type Handle struct {
	Name string
	Size int64
	MIME string
	// Open yields the byte source for transport. It may be nil in tests or
	// when the caller only needs screening.
	Open func() (io.ReadCloser, error)
}
