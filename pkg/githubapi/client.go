// Package githubapi wraps the go-github REST client behind a narrow
// interface so tool handlers can be exercised against a test double.
package githubapi

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/go-github/v60/github"
	"golang.org/x/oauth2"
)

// API is the subset of the GitHub REST surface this server uses. All list
// methods preserve upstream-provided order and cap results at limit.
type API interface {
	// Repositories
	ListRepos(ctx context.Context, visibility string, limit int) ([]*github.Repository, error)
	GetRepo(ctx context.Context, owner, repo string) (*github.Repository, error)
	CreateRepo(ctx context.Context, repo *github.Repository) (*github.Repository, error)

	// Contents
	GetContents(ctx context.Context, owner, repo, path, ref string) (*github.RepositoryContent, []*github.RepositoryContent, error)
	CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, error)
	UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, error)

	// Issues
	ListIssues(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, error)
	GetIssue(ctx context.Context, owner, repo string, number int) (*github.Issue, error)
	CreateIssue(ctx context.Context, owner, repo string, req *github.IssueRequest) (*github.Issue, error)
	EditIssue(ctx context.Context, owner, repo string, number int, req *github.IssueRequest) (*github.Issue, error)

	// Pull requests
	ListPulls(ctx context.Context, owner, repo, state string, limit int) ([]*github.PullRequest, error)
	GetPull(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	MergePull(ctx context.Context, owner, repo string, number int, method string) (*github.PullRequestMergeResult, error)

	// Refs
	GetRef(ctx context.Context, owner, repo, ref string) (*github.Reference, error)
	CreateRef(ctx context.Context, owner, repo string, ref *github.Reference) error

	// Search
	SearchCode(ctx context.Context, query string, limit int) (*github.CodeSearchResult, error)
}

type client struct {
	gh *github.Client
}

// New creates a token-authenticated GitHub API client.
func New(token string) API {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &client{gh: github.NewClient(tc)}
}

func (c *client) ListRepos(ctx context.Context, visibility string, limit int) ([]*github.Repository, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Visibility:  visibility,
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: limit},
	}
	repos, _, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list repositories")
	}
	return repos, nil
}

func (c *client) GetRepo(ctx context.Context, owner, repo string) (*github.Repository, error) {
	r, _, err := c.gh.Repositories.Get(ctx, owner, repo)
	return r, err
}

func (c *client) CreateRepo(ctx context.Context, repo *github.Repository) (*github.Repository, error) {
	r, _, err := c.gh.Repositories.Create(ctx, "", repo)
	return r, err
}

func (c *client) GetContents(ctx context.Context, owner, repo, path, ref string) (*github.RepositoryContent, []*github.RepositoryContent, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}
	file, dir, _, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
	return file, dir, err
}

func (c *client) CreateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, error) {
	resp, _, err := c.gh.Repositories.CreateFile(ctx, owner, repo, path, opts)
	return resp, err
}

func (c *client) UpdateFile(ctx context.Context, owner, repo, path string, opts *github.RepositoryContentFileOptions) (*github.RepositoryContentResponse, error) {
	resp, _, err := c.gh.Repositories.UpdateFile(ctx, owner, repo, path, opts)
	return resp, err
}

func (c *client) ListIssues(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, error) {
	issues, _, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
	return issues, err
}

func (c *client) GetIssue(ctx context.Context, owner, repo string, number int) (*github.Issue, error) {
	issue, _, err := c.gh.Issues.Get(ctx, owner, repo, number)
	return issue, err
}

func (c *client) CreateIssue(ctx context.Context, owner, repo string, req *github.IssueRequest) (*github.Issue, error) {
	issue, _, err := c.gh.Issues.Create(ctx, owner, repo, req)
	return issue, err
}

func (c *client) EditIssue(ctx context.Context, owner, repo string, number int, req *github.IssueRequest) (*github.Issue, error) {
	issue, _, err := c.gh.Issues.Edit(ctx, owner, repo, number, req)
	return issue, err
}

func (c *client) ListPulls(ctx context.Context, owner, repo, state string, limit int) ([]*github.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: limit},
	}
	pulls, _, err := c.gh.PullRequests.List(ctx, owner, repo, opts)
	return pulls, err
}

func (c *client) GetPull(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	return pr, err
}

func (c *client) MergePull(ctx context.Context, owner, repo string, number int, method string) (*github.PullRequestMergeResult, error) {
	result, _, err := c.gh.PullRequests.Merge(ctx, owner, repo, number, "", &github.PullRequestOptions{MergeMethod: method})
	return result, err
}

func (c *client) GetRef(ctx context.Context, owner, repo, ref string) (*github.Reference, error) {
	r, _, err := c.gh.Git.GetRef(ctx, owner, repo, ref)
	return r, err
}

func (c *client) CreateRef(ctx context.Context, owner, repo string, ref *github.Reference) error {
	_, _, err := c.gh.Git.CreateRef(ctx, owner, repo, ref)
	return err
}

func (c *client) SearchCode(ctx context.Context, query string, limit int) (*github.CodeSearchResult, error) {
	opts := &github.SearchOptions{ListOptions: github.ListOptions{PerPage: limit}}
	result, _, err := c.gh.Search.Code(ctx, query, opts)
	return result, err
}
