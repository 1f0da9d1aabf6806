package audio

import "errors"

// ErrAnalyzeFailed is returned when the decoder cannot open or decode the
// source file. Corresponds to the AnalyzeFailed error kind.
var ErrAnalyzeFailed = errors.New("audio: analyze failed")
