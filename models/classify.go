package models

import (
	"context"
	"errors"
	"net"
	"net/url"
	"regexp"
	"strconv"

	"github.com/helloagents/reagent"
)

// LangChainGo clients report HTTP failures as text, e.g.
// "API returned unexpected status code: 429: rate limited".
var statusPattern = regexp.MustCompile(`status code:?\s*(\d{3})`)

// Classify maps a provider error onto a *reagent.ModelError:
//   - transport failures (net.Error, *url.Error, deadline exceeded or a
//     cancelled context) are ModelErrorConnection: the request was cut off
//     before a response arrived
//   - errors that carry an HTTP status are ModelErrorStatus with the code
//   - everything else is ModelErrorUnknown
//
// Errors that already are *reagent.ModelError are returned unchanged.
// Classify returns nil for a nil error.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var me *reagent.ModelError
	if errors.As(err, &me) {
		return err
	}

	if m := statusPattern.FindStringSubmatch(err.Error()); m != nil {
		code, _ := strconv.Atoi(m[1])
		return &reagent.ModelError{Kind: reagent.ModelErrorStatus, StatusCode: code, Err: err}
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return &reagent.ModelError{Kind: reagent.ModelErrorConnection, Err: err}
	}

	return &reagent.ModelError{Kind: reagent.ModelErrorUnknown, Err: err}
}
