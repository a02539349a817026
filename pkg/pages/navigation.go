package pages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/entrhq/cxvoice/pkg/browser"
)

// Outcome is the result of a login-page navigation.
type Outcome string

const (
	// NavOK means the login page loaded without a security warning.
	NavOK Outcome = "ok"
	// NavBypassed means a certificate warning was clicked through.
	NavBypassed Outcome = "bypassed"
	// NavFatal means navigation failed for a reason the bypass cannot fix.
	NavFatal Outcome = "fatal"
)

// Trigger records what revealed the certificate warning.
type Trigger string

const (
	TriggerNone Trigger = "none"
	// TriggerError: goto itself failed with a certificate error.
	TriggerError Trigger = "error"
	// TriggerWarning: goto succeeded but the warning page rendered.
	TriggerWarning Trigger = "warning"
)

// NavResult is the typed outcome of GotoLoginPage.
type NavResult struct {
	URL     string
	Outcome Outcome
	Trigger Trigger
	Err     error
}

func (r NavResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("%s (%s trigger): %v", r.Outcome, r.Trigger, r.Err)
	}
	return fmt.Sprintf("%s (%s trigger)", r.Outcome, r.Trigger)
}

// Interstitial targets of Chromium's certificate warning page.
var (
	advancedButton = browser.ByRole(browser.RoleButton, "Advanced")
	proceedLink    = browser.ByRolePattern(browser.RoleLink, proceedPattern)
)

// warningProbe bounds the state-triggered recheck.
const warningProbe = time.Second

// classify decides whether a goto error can be recovered by the bypass.
func classify(err error) (Outcome, Trigger) {
	if err == nil {
		return NavOK, TriggerNone
	}
	var navErr *browser.NavigationError
	if errors.As(err, &navErr) && navErr.IsCertificate() {
		return NavBypassed, TriggerError
	}
	return NavFatal, TriggerNone
}

// navigateWithBypass navigates to url and clicks through a certificate
// warning whether it surfaces as a goto error or as a rendered page.
func navigateWithBypass(ctx context.Context, s browser.Surface, url string, opts browser.NavigateOptions) (NavResult, error) {
	result := NavResult{URL: url}

	gotoErr := s.Goto(ctx, url, opts)
	result.Outcome, result.Trigger = classify(gotoErr)
	if result.Outcome == NavFatal {
		result.Err = gotoErr
		return result, fmt.Errorf("failed to open %s: %w", url, gotoErr)
	}

	if result.Trigger == TriggerError {
		if err := bypassInterstitial(ctx, s); err != nil {
			result.Outcome, result.Err = NavFatal, err
			return result, err
		}
	}

	// The warning can render without goto failing, and a first bypass can
	// land on a second warning.
	if s.IsVisible(ctx, advancedButton, warningProbe) {
		if result.Trigger == TriggerNone {
			result.Trigger = TriggerWarning
		}
		result.Outcome = NavBypassed
		if err := bypassInterstitial(ctx, s); err != nil {
			result.Outcome, result.Err = NavFatal, err
			return result, err
		}
	}

	return result, nil
}

// bypassInterstitial clicks "Advanced" then "Proceed to ... (unsafe)".
func bypassInterstitial(ctx context.Context, s browser.Surface) error {
	if err := s.Click(ctx, advancedButton); err != nil {
		return fmt.Errorf("failed to open certificate warning details: %w", err)
	}
	if err := s.Click(ctx, proceedLink); err != nil {
		return fmt.Errorf("failed to proceed past certificate warning: %w", err)
	}
	return nil
}
