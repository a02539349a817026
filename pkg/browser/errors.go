package browser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrSessionClosed is returned when an action is issued on a closed session.
var ErrSessionClosed = errors.New("browser session closed")

// NavigationError is returned when page.goto fails.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// certificateMarkers are substrings Chromium uses for TLS interstitial failures.
var certificateMarkers = []string{
	"ERR_CERT_",
	"ERR_SSL_",
	"ERR_BAD_SSL_CLIENT_AUTH_CERT",
	"SSL_ERROR",
	"certificate",
}

// IsCertificate reports whether the navigation failed on a TLS certificate problem.
func (e *NavigationError) IsCertificate() bool {
	if e.Err == nil {
		return false
	}
	msg := e.Err.Error()
	for _, marker := range certificateMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// WaitError is returned when a target does not become visible in time.
type WaitError struct {
	Target  Target
	Timeout time.Duration
	Err     error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("%s not visible within %s: %v", e.Target, e.Timeout, e.Err)
}

func (e *WaitError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is a playwright timeout or a WaitError.
func IsTimeout(err error) bool {
	var waitErr *WaitError
	return errors.As(err, &waitErr) || errors.Is(err, playwright.ErrTimeout)
}
