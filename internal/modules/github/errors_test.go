package github

import (
	"net/http"
	"testing"

	"github.com/go-faster/errors"
	"github.com/google/go-github/v60/github"

	"repomate/server/internal/modules"
)

func respWithStatus(status int) *http.Response {
	return &http.Response{
		StatusCode: status,
		Request:    &http.Request{},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want modules.ErrorKind
	}{
		{
			name: "unauthorized",
			err:  &github.ErrorResponse{Response: respWithStatus(401), Message: "Bad credentials"},
			want: modules.KindAuthError,
		},
		{
			name: "forbidden",
			err:  &github.ErrorResponse{Response: respWithStatus(403), Message: "Resource not accessible"},
			want: modules.KindAuthError,
		},
		{
			name: "not found",
			err:  &github.ErrorResponse{Response: respWithStatus(404), Message: "Not Found"},
			want: modules.KindNotFound,
		},
		{
			name: "unmergeable pull request",
			err:  &github.ErrorResponse{Response: respWithStatus(405), Message: "Pull Request is not mergeable"},
			want: modules.KindConflict,
		},
		{
			name: "merge conflict",
			err:  &github.ErrorResponse{Response: respWithStatus(409), Message: "Merge conflict"},
			want: modules.KindConflict,
		},
		{
			name: "already exists",
			err:  &github.ErrorResponse{Response: respWithStatus(422), Message: "Reference already exists"},
			want: modules.KindConflict,
		},
		{
			name: "other validation failure",
			err:  &github.ErrorResponse{Response: respWithStatus(422), Message: "Validation Failed"},
			want: modules.KindUpstream,
		},
		{
			name: "server error",
			err:  &github.ErrorResponse{Response: respWithStatus(502), Message: "Bad Gateway"},
			want: modules.KindUpstream,
		},
		{
			name: "primary rate limit",
			err:  &github.RateLimitError{Rate: github.Rate{Remaining: 0}},
			want: modules.KindRateLimited,
		},
		{
			name: "secondary rate limit",
			err:  &github.AbuseRateLimitError{},
			want: modules.KindRateLimited,
		},
		{
			name: "transport failure",
			err:  errors.New("dial tcp: connection refused"),
			want: modules.KindUpstream,
		},
		{
			name: "already classified passes through",
			err:  modules.Errorf(modules.KindAuthError, "GITHUB_TOKEN environment variable is not set"),
			want: modules.KindAuthError,
		},
		{
			name: "wrapped error response",
			err:  errors.Wrap(&github.ErrorResponse{Response: respWithStatus(404), Message: "Not Found"}, "get repo"),
			want: modules.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if got == nil {
				t.Fatal("classify returned nil for non-nil error")
			}
			if modules.KindOf(got) != tt.want {
				t.Errorf("kind = %s, want %s (message: %s)", modules.KindOf(got), tt.want, got.Error())
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
}
