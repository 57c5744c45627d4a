package clients

import (
	"net/http"
	"time"
)

type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return NewHTTPWithTimeout(60 * time.Second) }

// NewHTTPWithTimeout is for sidecars whose calls outlast the default, such as
// transcription of a full meeting.
func NewHTTPWithTimeout(d time.Duration) *HTTP {
	return &HTTP{c: &http.Client{Timeout: d}}
}
