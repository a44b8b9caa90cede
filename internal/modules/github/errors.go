package github

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/go-github/v60/github"

	"repomate/server/internal/modules"
)

// classify reduces any upstream error to the closed ErrorKind set. Errors
// that already carry a kind pass through unchanged. The credential never
// appears in a classified message.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var te *modules.ToolError
	if errors.As(err, &te) {
		return te
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		msg := "GitHub API rate limit exceeded"
		if !rateErr.Rate.Reset.IsZero() {
			msg = fmt.Sprintf("%s, resets at %s", msg, rateErr.Rate.Reset.Format(time.RFC3339))
		}
		return modules.Errorf(modules.KindRateLimited, "%s", msg)
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		msg := "GitHub secondary rate limit hit"
		if abuseErr.RetryAfter != nil {
			msg = fmt.Sprintf("%s, retry after %s", msg, *abuseErr.RetryAfter)
		}
		return modules.Errorf(modules.KindRateLimited, "%s", msg)
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) {
		status := 0
		if respErr.Response != nil {
			status = respErr.Response.StatusCode
		}
		message := respErr.Message
		if message == "" {
			message = err.Error()
		}
		switch status {
		case 401, 403:
			return modules.Errorf(modules.KindAuthError, "GitHub API error (%d): %s", status, message)
		case 404:
			return modules.Errorf(modules.KindNotFound, "GitHub API error (404): %s", message)
		case 405, 409:
			// 405 is how GitHub reports an unmergeable pull request.
			return modules.Errorf(modules.KindConflict, "GitHub API error (%d): %s", status, message)
		case 422:
			if strings.Contains(strings.ToLower(message), "already exists") {
				return modules.Errorf(modules.KindConflict, "GitHub API error (422): %s", message)
			}
			return modules.Errorf(modules.KindUpstream, "GitHub API error (422): %s", message)
		default:
			return modules.Errorf(modules.KindUpstream, "GitHub API error (%d): %s", status, message)
		}
	}

	// Transport-level failure: DNS, timeout, connection reset.
	return modules.Errorf(modules.KindUpstream, "%s", err.Error())
}
