package sisindex

import "errors"

// ErrNotFound indicates the requested document is not registered.
var ErrNotFound = errors.New("document not registered")

// ErrStoryTypeLocked indicates an attempt to change a story's type
// after scenes have been linked under its role vocabulary.
var ErrStoryTypeLocked = errors.New("story type locked by existing scene links")

// ErrKindMismatch indicates a link endpoint has the wrong document kind,
// for example linking a media document as a scene.
var ErrKindMismatch = errors.New("document kind mismatch")
