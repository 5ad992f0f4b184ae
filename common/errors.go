package common

import "errors"

// Error kinds surfaced by the filesystem stack. They are plain sentinel
// values: layers return them unwrapped and callers compare with == or
// errors.Is. No operation retries on any of them.
var (
	ErrNotFound    = errors.New("no such file or directory")
	ErrExists      = errors.New("file exists")
	ErrNotDir      = errors.New("not a directory")
	ErrIsDir       = errors.New("is a directory")
	ErrInvalidPath = errors.New("invalid path")
	ErrNameInvalid = errors.New("invalid file name")
	ErrNoSpace     = errors.New("no space left on device")
	ErrFileTooBig  = errors.New("file too large")
	ErrBadFd       = errors.New("bad file descriptor")
	ErrIO          = errors.New("i/o error")
	ErrInval       = errors.New("invalid argument")
	ErrMaxOpen     = errors.New("too many open files")
)
