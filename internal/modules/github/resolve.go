package github

import (
	"strings"

	"repomate/server/internal/modules"
)

// RepoRef is a fully qualified owner/name pair identifying one repository.
// Both fields are non-empty after resolution.
type RepoRef struct {
	Owner string
	Name  string
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// ResolveRepo normalizes a user-supplied repository identifier. Accepts
// "owner/repo" as-is; a bare "repo" gets the configured default owner.
// More than one slash is ambiguous and rejected. Pure function.
func ResolveRepo(raw, defaultOwner string) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoRef{}, modules.Errorf(modules.KindInvalidArgument, "repository reference is empty")
	}

	parts := strings.Split(raw, "/")
	switch len(parts) {
	case 1:
		if defaultOwner == "" {
			return RepoRef{}, modules.Errorf(modules.KindInvalidArgument, "no default owner configured for bare repository name %q", raw)
		}
		return RepoRef{Owner: defaultOwner, Name: raw}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return RepoRef{}, modules.Errorf(modules.KindInvalidArgument, "invalid repository reference %q", raw)
		}
		return RepoRef{Owner: parts[0], Name: parts[1]}, nil
	default:
		return RepoRef{}, modules.Errorf(modules.KindInvalidArgument, "ambiguous repository reference %q: expected owner/repo or repo", raw)
	}
}
