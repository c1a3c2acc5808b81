package graph

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// UpstreamError is returned when the Graph API (or the network in front of
// it) fails a request.
type UpstreamError struct {
	Status     int
	Code       int
	Subcode    int
	Type       string
	Message    string
	TraceID    string
	Transient  bool
	RetryAfter time.Duration
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("graph api transport error: %s", e.Message)
	}
	return fmt.Sprintf("graph api error (status=%d code=%d subcode=%d): %s", e.Status, e.Code, e.Subcode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Platform error codes that signal throttling or temporary unavailability.
var transientCodes = map[int]bool{
	1:     true, // unknown error
	2:     true, // service temporarily unavailable
	4:     true, // application request limit
	17:    true, // user request limit
	32:    true, // page request limit
	341:   true, // application limit
	613:   true, // calls within one hour exceeded
	80000: true, // ads insights throttle
	80003: true, // custom audience throttle
	80004: true, // ads management throttle
	80014: true, // ads lead gen throttle
}

var transientSubcodes = map[int]bool{
	2446079: true, // too many calls to ad account
	1487742: true, // too many calls in a short time
	1504022: true, // request limit reached
	1504039: true, // temporary backend timeout
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	if ue.Transient {
		return true
	}
	if ue.Status == http.StatusTooManyRequests || ue.Status >= 500 {
		return true
	}
	return transientCodes[ue.Code] || transientSubcodes[ue.Subcode]
}

// RetryAfterOf returns the server supplied retry hint carried by err, if any.
func RetryAfterOf(err error) time.Duration {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.RetryAfter
	}
	return 0
}

type errorEnvelope struct {
	Error *struct {
		Message     string `json:"message"`
		Type        string `json:"type"`
		Code        int    `json:"code"`
		Subcode     int    `json:"error_subcode"`
		IsTransient bool   `json:"is_transient"`
		TraceID     string `json:"fbtrace_id"`
	} `json:"error"`
}

func newUpstreamError(status int, header http.Header, body []byte) *UpstreamError {
	ue := &UpstreamError{
		Status:     status,
		Message:    http.StatusText(status),
		RetryAfter: parseRetryAfter(header.Get("Retry-After")),
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		ue.Code = env.Error.Code
		ue.Subcode = env.Error.Subcode
		ue.Type = env.Error.Type
		ue.TraceID = env.Error.TraceID
		ue.Transient = env.Error.IsTransient
		if env.Error.Message != "" {
			ue.Message = env.Error.Message
		}
	} else if len(body) > 0 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		ue.Message = msg
	}
	return ue
}

// parseRetryAfter reads the delay-seconds form of Retry-After; anything else is 0.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
