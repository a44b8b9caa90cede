package github

import (
	"context"
	"os"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/go-github/v60/github"

	"repomate/server/internal/modules"
	"repomate/server/pkg/githubapi"
)

// Result caps, matching the upstream page sizes this server requests.
const (
	listLimit   = 50
	searchLimit = 20
)

// GitHubModule implements the Module interface for the GitHub API. It owns
// the lazily-initialized upstream client handle; handlers never touch the
// credential directly.
type GitHubModule struct {
	defaultOwner string
	cell         clientCell
	handlers     map[string]toolHandler
}

// New creates a GitHubModule that authenticates with the GITHUB_TOKEN
// environment variable on first use. defaultOwner qualifies bare repository
// names.
func New(defaultOwner string) *GitHubModule {
	return NewWithDial(defaultOwner, func() (githubapi.API, error) {
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			return nil, modules.Errorf(modules.KindAuthError,
				"GITHUB_TOKEN environment variable is not set, cannot access GitHub API")
		}
		return githubapi.New(token), nil
	})
}

// NewWithDial creates a GitHubModule with a custom client constructor.
// Tests inject a stub upstream through this.
func NewWithDial(defaultOwner string, dial func() (githubapi.API, error)) *GitHubModule {
	m := &GitHubModule{
		defaultOwner: defaultOwner,
		cell:         clientCell{dial: dial},
	}
	m.handlers = map[string]toolHandler{
		"list_repos":    m.listRepos,
		"get_repo":      m.getRepo,
		"list_files":    m.listFiles,
		"read_file":     m.readFile,
		"write_file":    m.writeFile,
		"create_repo":   m.createRepo,
		"list_issues":   m.listIssues,
		"get_issue":     m.getIssue,
		"create_issue":  m.createIssue,
		"update_issue":  m.updateIssue,
		"list_prs":      m.listPRs,
		"get_pr":        m.getPR,
		"merge_pr":      m.mergePR,
		"create_branch": m.createBranch,
		"search_code":   m.searchCode,
	}
	return m
}

// Name returns the module name
func (m *GitHubModule) Name() string {
	return "github"
}

// Description returns the module description
func (m *GitHubModule) Description() string {
	return "GitHub API - repository, file, issue, pull request, branch, and code search operations"
}

// Tools returns all available tools
func (m *GitHubModule) Tools() []modules.Tool {
	return toolDefinitions
}

// ExecuteTool executes a tool by name and returns a JSON payload.
func (m *GitHubModule) ExecuteTool(ctx context.Context, name string, params map[string]any) (string, error) {
	handler, ok := m.handlers[name]
	if !ok {
		return "", modules.Errorf(modules.KindUnknownTool, "unknown tool: %s", name)
	}
	return handler(ctx, params)
}

// ToCompact converts JSON results to compact format (CSV/MD).
// Implements modules.CompactConverter.
func (m *GitHubModule) ToCompact(toolName string, jsonResult string) string {
	return formatCompact(toolName, jsonResult)
}

// =============================================================================
// Lazy client handle: Uninitialized -> Initializing -> Ready, once per process
// =============================================================================

type clientCell struct {
	dial func() (githubapi.API, error)
	once sync.Once
	api  githubapi.API
	err  error
}

func (c *clientCell) get() (githubapi.API, error) {
	c.once.Do(func() {
		c.api, c.err = c.dial()
	})
	return c.api, c.err
}

// client returns the shared upstream handle, constructing it on first use.
// Concurrent first calls observe exactly one construction.
func (m *GitHubModule) client() (githubapi.API, error) {
	api, err := m.cell.get()
	if err != nil {
		return nil, classify(err)
	}
	return api, nil
}

func (m *GitHubModule) resolve(raw string) (RepoRef, error) {
	return ResolveRepo(raw, m.defaultOwner)
}

// =============================================================================
// Tool Definitions
// =============================================================================

const repoParamDesc = "Repository name ('my-repo' or 'owner/repo')"

var toolDefinitions = []modules.Tool{
	{
		Name:        "list_repos",
		Description: "List repositories for the authenticated user.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"visibility": {Type: "string", Description: "Filter by visibility: 'all', 'public', or 'private'. Default: all"},
			},
		},
	},
	{
		Name:        "get_repo",
		Description: "Get repository details.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo": {Type: "string", Description: repoParamDesc},
			},
			Required: []string{"repo"},
		},
	},
	{
		Name:        "list_files",
		Description: "List files and directories at a path in a repository.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo": {Type: "string", Description: repoParamDesc},
				"path": {Type: "string", Description: "Path within the repo. Default: root"},
				"ref":  {Type: "string", Description: "Branch or commit ref. Default: repo's default branch"},
			},
			Required: []string{"repo"},
		},
	},
	{
		Name:        "read_file",
		Description: "Read a file from a repository.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo": {Type: "string", Description: repoParamDesc},
				"path": {Type: "string", Description: "File path within the repo"},
				"ref":  {Type: "string", Description: "Branch or commit ref. Default: repo's default branch"},
			},
			Required: []string{"repo", "path"},
		},
	},
	{
		Name:        "write_file",
		Description: "Create or update a file in a repository.",
		Annotations: modules.AnnotateWrite,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo":    {Type: "string", Description: repoParamDesc},
				"path":    {Type: "string", Description: "File path within the repo"},
				"content": {Type: "string", Description: "File content to write"},
				"message": {Type: "string", Description: "Commit message"},
				"branch":  {Type: "string", Description: "Branch name. Default: repo's default branch"},
			},
			Required: []string{"repo", "path", "content", "message"},
		},
	},
	{
		Name:        "create_repo",
		Description: "Create a new repository for the authenticated user.",
		Annotations: modules.AnnotateWrite,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"name":        {Type: "string", Description: "Repository name"},
				"description": {Type: "string", Description: "Repository description"},
				"private":     {Type: "boolean", Description: "Whether the repo should be private. Default: true"},
				"auto_init":   {Type: "boolean", Description: "Initialize with a README. Default: false"},
			},
			Required: []string{"name"},
		},
	},
	{
		Name:        "list_issues",
		Description: "List issues for a repository.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo":   {Type: "string", Description: repoParamDesc},
				"state":  {Type: "string", Description: "Filter by state: 'open', 'closed', or 'all'. Default: open"},
				"labels": {Type: "string", Description: "Comma-separated label names to filter by"},
			},
			Required: []string{"repo"},
		},
	},
	{
		Name:        "get_issue",
		Description: "Get details of a specific issue.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo":   {Type: "string", Description: repoParamDesc},
				"number": {Type: "number", Description: "Issue number"},
			},
			Required: []string{"repo", "number"},
		},
	},
	{
		Name:        "create_issue",
		Description: "Create a new issue in a repository.",
		Annotations: modules.AnnotateWrite,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo":      {Type: "string", Description: repoParamDesc},
				"title":     {Type: "string", Description: "Issue title"},
				"body":      {Type: "string", Description: "Issue body (supports markdown)"},
				"labels":    {Type: "string", Description: "Comma-separated label names"},
				"assignees": {Type: "string", Description: "Comma-separated GitHub usernames to assign"},
			},
			Required: []string{"repo", "title"},
		},
	},
	{
		Name:        "update_issue",
		Description: "Update an existing issue.",
		Annotations: modules.AnnotateWrite,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo":      {Type: "string", Description: repoParamDesc},
				"number":    {Type: "number", Description: "Issue number"},
				"title":     {Type: "string", Description: "New title"},
				"body":      {Type: "string", Description: "New body"},
				"state":     {Type: "string", Description: "New state: 'open' or 'closed'"},
				"labels":    {Type: "string", Description: "Comma-separated label names to set"},
				"assignees": {Type: "string", Description: "Comma-separated GitHub usernames to assign"},
			},
			Required: []string{"repo", "number"},
		},
	},
	{
		Name:        "list_prs",
		Description: "List pull requests for a repository.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo":  {Type: "string", Description: repoParamDesc},
				"state": {Type: "string", Description: "Filter by state: 'open', 'closed', or 'all'. Default: open"},
			},
			Required: []string{"repo"},
		},
	},
	{
		Name:        "get_pr",
		Description: "Get pull request details.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo":   {Type: "string", Description: repoParamDesc},
				"number": {Type: "number", Description: "Pull request number"},
			},
			Required: []string{"repo", "number"},
		},
	},
	{
		Name:        "merge_pr",
		Description: "Merge a pull request. merge_method is 'merge', 'squash', or 'rebase'; default: squash.",
		Annotations: modules.AnnotateWrite,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo":         {Type: "string", Description: repoParamDesc},
				"number":       {Type: "number", Description: "Pull request number"},
				"merge_method": {Type: "string", Description: "Merge strategy: 'merge', 'squash', or 'rebase'. Default: squash"},
			},
			Required: []string{"repo", "number"},
		},
	},
	{
		Name:        "create_branch",
		Description: "Create a new branch in a repository.",
		Annotations: modules.AnnotateWrite,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"repo":        {Type: "string", Description: repoParamDesc},
				"branch":      {Type: "string", Description: "Name for the new branch"},
				"from_branch": {Type: "string", Description: "Base branch. Default: repo's default branch"},
			},
			Required: []string{"repo", "branch"},
		},
	},
	{
		Name:        "search_code",
		Description: "Search for code across repositories.",
		Annotations: modules.AnnotateReadOnly,
		InputSchema: modules.InputSchema{
			Type: "object",
			Properties: map[string]modules.Property{
				"query": {Type: "string", Description: "Search query (code to find)"},
				"repo":  {Type: "string", Description: "Optional repo to scope the search to ('my-repo' or 'owner/repo')"},
			},
			Required: []string{"query"},
		},
	},
}

// =============================================================================
// Payload shapes: each tool returns only its documented fields
// =============================================================================

type repoSummary struct {
	Name        string `json:"name"`
	Visibility  string `json:"visibility"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
}

type repoDetail struct {
	FullName      string `json:"full_name"`
	Description   string `json:"description,omitempty"`
	Visibility    string `json:"visibility"`
	DefaultBranch string `json:"default_branch"`
	Language      string `json:"language,omitempty"`
	Stars         int    `json:"stars"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	HTMLURL       string `json:"html_url"`
}

type fileEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
	Size int    `json:"size,omitempty"`
}

type fileContent struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Size    int    `json:"size"`
	SHA     string `json:"sha"`
	Binary  bool   `json:"binary,omitempty"`
	Content string `json:"content,omitempty"`
}

type writeResult struct {
	Repo    string `json:"repo"`
	Path    string `json:"path"`
	Action  string `json:"action"` // "created" or "updated"
	Commit  string `json:"commit,omitempty"`
	Message string `json:"message"`
}

type createRepoResult struct {
	FullName   string `json:"full_name"`
	Visibility string `json:"visibility"`
	HTMLURL    string `json:"html_url"`
}

type issueSummary struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	State  string   `json:"state"`
	Labels []string `json:"labels,omitempty"`
}

type issueDetail struct {
	Number    int      `json:"number"`
	Title     string   `json:"title"`
	State     string   `json:"state"`
	Body      string   `json:"body,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	HTMLURL   string   `json:"html_url"`
}

type issueRef struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state,omitempty"`
	HTMLURL string `json:"html_url"`
}

type prSummary struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Head   string `json:"head"`
	Base   string `json:"base"`
}

type prDetail struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	State        string `json:"state"`
	Head         string `json:"head"`
	Base         string `json:"base"`
	Author       string `json:"author,omitempty"`
	Mergeable    *bool  `json:"mergeable,omitempty"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	ChangedFiles int    `json:"changed_files"`
	HTMLURL      string `json:"html_url"`
}

type mergeResult struct {
	Merged  bool   `json:"merged"`
	SHA     string `json:"sha,omitempty"`
	Message string `json:"message,omitempty"`
	Method  string `json:"method"`
}

type branchResult struct {
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
	Base   string `json:"base"`
}

type codeHit struct {
	Repo string `json:"repo"`
	Path string `json:"path"`
}

type searchResult struct {
	Total int       `json:"total"`
	Items []codeHit `json:"items"`
}

// =============================================================================
// Tool Handlers
// =============================================================================

type toolHandler func(ctx context.Context, params map[string]any) (string, error)

func visibilityOf(private bool) string {
	if private {
		return "private"
	}
	return "public"
}

func (m *GitHubModule) listRepos(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	visibility, _ := params["visibility"].(string)
	if visibility == "" {
		visibility = "all"
	}
	repos, err := api.ListRepos(ctx, visibility, listLimit)
	if err != nil {
		return "", classify(err)
	}
	out := make([]repoSummary, 0, len(repos))
	for _, r := range repos {
		out = append(out, repoSummary{
			Name:        r.GetName(),
			Visibility:  visibilityOf(r.GetPrivate()),
			Language:    r.GetLanguage(),
			Description: r.GetDescription(),
		})
	}
	return modules.ToJSON(out)
}

func (m *GitHubModule) getRepo(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	ref, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	r, err := api.GetRepo(ctx, ref.Owner, ref.Name)
	if err != nil {
		return "", classify(err)
	}
	out := repoDetail{
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		Visibility:    visibilityOf(r.GetPrivate()),
		DefaultBranch: r.GetDefaultBranch(),
		Language:      r.GetLanguage(),
		Stars:         r.GetStargazersCount(),
		HTMLURL:       r.GetHTMLURL(),
	}
	if !r.GetUpdatedAt().IsZero() {
		out.UpdatedAt = r.GetUpdatedAt().Format("2006-01-02T15:04:05Z07:00")
	}
	return modules.ToJSON(&out)
}

func (m *GitHubModule) listFiles(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	path, _ := params["path"].(string)
	ref, _ := params["ref"].(string)

	file, dir, err := api.GetContents(ctx, repoRef.Owner, repoRef.Name, path, ref)
	if err != nil {
		return "", classify(err)
	}
	if dir == nil && file != nil {
		dir = []*github.RepositoryContent{file}
	}

	entries := make([]fileEntry, 0, len(dir))
	for _, item := range dir {
		e := fileEntry{
			Name: item.GetName(),
			Type: item.GetType(),
			Path: item.GetPath(),
		}
		if item.GetType() == "file" {
			e.Size = item.GetSize()
		}
		entries = append(entries, e)
	}
	// Directories first, then case-insensitive by name.
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].Type == "dir", entries[j].Type == "dir"
		if di != dj {
			return di
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
	return modules.ToJSON(entries)
}

func (m *GitHubModule) readFile(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	path := params["path"].(string)
	ref, _ := params["ref"].(string)

	file, dir, err := api.GetContents(ctx, repoRef.Owner, repoRef.Name, path, ref)
	if err != nil {
		return "", classify(err)
	}
	if dir != nil {
		return "", modules.Errorf(modules.KindInvalidArgument, "path is a directory, not a file: %s", path)
	}

	out := fileContent{
		Name: file.GetName(),
		Path: file.GetPath(),
		Size: file.GetSize(),
		SHA:  file.GetSHA(),
	}
	content, decodeErr := file.GetContent()
	if decodeErr != nil || !utf8.ValidString(content) {
		out.Binary = true
	} else {
		out.Content = content
	}
	return modules.ToJSON(&out)
}

func (m *GitHubModule) writeFile(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	path := params["path"].(string)
	content := params["content"].(string)
	message := params["message"].(string)
	branch, _ := params["branch"].(string)

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: []byte(content),
	}
	if branch != "" {
		opts.Branch = github.String(branch)
	}

	// Probe for an existing file to decide create vs update. Any probe
	// failure other than not-found aborts before the write.
	existing, dir, probeErr := api.GetContents(ctx, repoRef.Owner, repoRef.Name, path, branch)
	if probeErr != nil {
		classified := classify(probeErr)
		if modules.KindOf(classified) != modules.KindNotFound {
			return "", classified
		}
		resp, err := api.CreateFile(ctx, repoRef.Owner, repoRef.Name, path, opts)
		if err != nil {
			return "", classify(err)
		}
		return modules.ToJSON(&writeResult{
			Repo:    repoRef.String(),
			Path:    path,
			Action:  "created",
			Commit:  resp.Commit.GetSHA(),
			Message: message,
		})
	}
	if dir != nil {
		return "", modules.Errorf(modules.KindInvalidArgument, "path is a directory: %s", path)
	}

	opts.SHA = github.String(existing.GetSHA())
	resp, err := api.UpdateFile(ctx, repoRef.Owner, repoRef.Name, path, opts)
	if err != nil {
		return "", classify(err)
	}
	return modules.ToJSON(&writeResult{
		Repo:    repoRef.String(),
		Path:    path,
		Action:  "updated",
		Commit:  resp.Commit.GetSHA(),
		Message: message,
	})
}

func (m *GitHubModule) createRepo(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	name := params["name"].(string)
	description, _ := params["description"].(string)
	private := true
	if v, ok := params["private"].(bool); ok {
		private = v
	}
	autoInit, _ := params["auto_init"].(bool)

	r, err := api.CreateRepo(ctx, &github.Repository{
		Name:        github.String(name),
		Description: github.String(description),
		Private:     github.Bool(private),
		AutoInit:    github.Bool(autoInit),
	})
	if err != nil {
		return "", classify(err)
	}
	return modules.ToJSON(&createRepoResult{
		FullName:   r.GetFullName(),
		Visibility: visibilityOf(r.GetPrivate()),
		HTMLURL:    r.GetHTMLURL(),
	})
}

func (m *GitHubModule) listIssues(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	state, _ := params["state"].(string)
	if state == "" {
		state = "open"
	}
	opts := &github.IssueListByRepoOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: listLimit},
	}
	if labels, _ := params["labels"].(string); labels != "" {
		opts.Labels = modules.SplitList(labels)
	}

	issues, err := api.ListIssues(ctx, repoRef.Owner, repoRef.Name, opts)
	if err != nil {
		return "", classify(err)
	}
	out := make([]issueSummary, 0, len(issues))
	for _, issue := range issues {
		// The issues endpoint also returns pull requests; skip them.
		if issue.IsPullRequest() {
			continue
		}
		out = append(out, issueSummary{
			Number: issue.GetNumber(),
			Title:  issue.GetTitle(),
			State:  issue.GetState(),
			Labels: labelNames(issue.Labels),
		})
	}
	return modules.ToJSON(out)
}

func (m *GitHubModule) getIssue(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	number := int(params["number"].(float64))

	issue, err := api.GetIssue(ctx, repoRef.Owner, repoRef.Name, number)
	if err != nil {
		return "", classify(err)
	}
	out := issueDetail{
		Number:  issue.GetNumber(),
		Title:   issue.GetTitle(),
		State:   issue.GetState(),
		Body:    issue.GetBody(),
		Labels:  labelNames(issue.Labels),
		HTMLURL: issue.GetHTMLURL(),
	}
	for _, a := range issue.Assignees {
		out.Assignees = append(out.Assignees, a.GetLogin())
	}
	if !issue.GetCreatedAt().IsZero() {
		out.CreatedAt = issue.GetCreatedAt().Format("2006-01-02T15:04:05Z07:00")
	}
	return modules.ToJSON(&out)
}

func (m *GitHubModule) createIssue(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	title := params["title"].(string)

	req := &github.IssueRequest{Title: github.String(title)}
	if body, _ := params["body"].(string); body != "" {
		req.Body = github.String(body)
	}
	if labels, _ := params["labels"].(string); labels != "" {
		l := modules.SplitList(labels)
		req.Labels = &l
	}
	if assignees, _ := params["assignees"].(string); assignees != "" {
		a := modules.SplitList(assignees)
		req.Assignees = &a
	}

	issue, err := api.CreateIssue(ctx, repoRef.Owner, repoRef.Name, req)
	if err != nil {
		return "", classify(err)
	}
	return modules.ToJSON(&issueRef{
		Number:  issue.GetNumber(),
		Title:   issue.GetTitle(),
		HTMLURL: issue.GetHTMLURL(),
	})
}

func (m *GitHubModule) updateIssue(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	number := int(params["number"].(float64))

	req := &github.IssueRequest{}
	if title, _ := params["title"].(string); title != "" {
		req.Title = github.String(title)
	}
	if body, _ := params["body"].(string); body != "" {
		req.Body = github.String(body)
	}
	if state, _ := params["state"].(string); state != "" {
		if state != "open" && state != "closed" {
			return "", modules.Errorf(modules.KindInvalidArgument, "invalid issue state %q: expected 'open' or 'closed'", state)
		}
		req.State = github.String(state)
	}
	if labels, _ := params["labels"].(string); labels != "" {
		l := modules.SplitList(labels)
		req.Labels = &l
	}
	if assignees, _ := params["assignees"].(string); assignees != "" {
		a := modules.SplitList(assignees)
		req.Assignees = &a
	}

	issue, err := api.EditIssue(ctx, repoRef.Owner, repoRef.Name, number, req)
	if err != nil {
		return "", classify(err)
	}
	return modules.ToJSON(&issueRef{
		Number:  issue.GetNumber(),
		Title:   issue.GetTitle(),
		State:   issue.GetState(),
		HTMLURL: issue.GetHTMLURL(),
	})
}

func (m *GitHubModule) listPRs(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	state, _ := params["state"].(string)
	if state == "" {
		state = "open"
	}

	pulls, err := api.ListPulls(ctx, repoRef.Owner, repoRef.Name, state, listLimit)
	if err != nil {
		return "", classify(err)
	}
	out := make([]prSummary, 0, len(pulls))
	for _, pr := range pulls {
		out = append(out, prSummary{
			Number: pr.GetNumber(),
			Title:  pr.GetTitle(),
			State:  pr.GetState(),
			Head:   pr.GetHead().GetRef(),
			Base:   pr.GetBase().GetRef(),
		})
	}
	return modules.ToJSON(out)
}

func (m *GitHubModule) getPR(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	number := int(params["number"].(float64))

	pr, err := api.GetPull(ctx, repoRef.Owner, repoRef.Name, number)
	if err != nil {
		return "", classify(err)
	}
	return modules.ToJSON(&prDetail{
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		State:        pr.GetState(),
		Head:         pr.GetHead().GetRef(),
		Base:         pr.GetBase().GetRef(),
		Author:       pr.GetUser().GetLogin(),
		Mergeable:    pr.Mergeable,
		Additions:    pr.GetAdditions(),
		Deletions:    pr.GetDeletions(),
		ChangedFiles: pr.GetChangedFiles(),
		HTMLURL:      pr.GetHTMLURL(),
	})
}

func (m *GitHubModule) mergePR(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	number := int(params["number"].(float64))
	method, _ := params["merge_method"].(string)
	if method == "" {
		method = "squash"
	}
	switch method {
	case "merge", "squash", "rebase":
	default:
		return "", modules.Errorf(modules.KindInvalidArgument, "invalid merge_method %q: expected 'merge', 'squash', or 'rebase'", method)
	}

	result, err := api.MergePull(ctx, repoRef.Owner, repoRef.Name, number, method)
	if err != nil {
		return "", classify(err)
	}
	if !result.GetMerged() {
		return "", modules.Errorf(modules.KindConflict, "pull request #%d was not merged: %s", number, result.GetMessage())
	}
	return modules.ToJSON(&mergeResult{
		Merged:  true,
		SHA:     result.GetSHA(),
		Message: result.GetMessage(),
		Method:  method,
	})
}

func (m *GitHubModule) createBranch(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	repoRef, err := m.resolve(params["repo"].(string))
	if err != nil {
		return "", err
	}
	branch := params["branch"].(string)
	base, _ := params["from_branch"].(string)

	if base == "" {
		r, err := api.GetRepo(ctx, repoRef.Owner, repoRef.Name)
		if err != nil {
			return "", classify(err)
		}
		base = r.GetDefaultBranch()
	}

	// Git.GetRef wants "heads/<branch>"; CreateRef wants the full "refs/heads/<branch>".
	baseRef, err := api.GetRef(ctx, repoRef.Owner, repoRef.Name, "heads/"+base)
	if err != nil {
		return "", classify(err)
	}
	newRef := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: baseRef.GetObject().SHA},
	}
	if err := api.CreateRef(ctx, repoRef.Owner, repoRef.Name, newRef); err != nil {
		return "", classify(err)
	}
	return modules.ToJSON(&branchResult{
		Repo:   repoRef.String(),
		Branch: branch,
		Base:   base,
	})
}

func (m *GitHubModule) searchCode(ctx context.Context, params map[string]any) (string, error) {
	api, err := m.client()
	if err != nil {
		return "", err
	}
	query := params["query"].(string)

	var fullQuery string
	if repo, _ := params["repo"].(string); repo != "" {
		repoRef, err := m.resolve(repo)
		if err != nil {
			return "", err
		}
		fullQuery = query + " repo:" + repoRef.String()
	} else {
		fullQuery = query + " user:" + m.defaultOwner
	}

	result, err := api.SearchCode(ctx, fullQuery, searchLimit)
	if err != nil {
		return "", classify(err)
	}
	hits := make([]codeHit, 0, len(result.CodeResults))
	for _, item := range result.CodeResults {
		hits = append(hits, codeHit{
			Repo: item.GetRepository().GetFullName(),
			Path: item.GetPath(),
		})
	}
	return modules.ToJSON(&searchResult{
		Total: result.GetTotal(),
		Items: hits,
	})
}

func labelNames(labels []*github.Label) []string {
	if len(labels) == 0 {
		return nil
	}
	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.GetName())
	}
	return names
}
