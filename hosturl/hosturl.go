// Package hosturl builds deep links from source locations to hosted
// repository browsers. Each hosting service has its own path and fragment
// convention; unknown hosts can be registered with a custom layout. Every
// component is sanitized before it reaches a URL, and any missing or
// unsafe input yields no link rather than a partial one.
package hosturl

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/c360studio/semlix/iri"
)

// Well-known hosts.
const (
	GitHub    = "github.com"
	GitLab    = "gitlab.com"
	Bitbucket = "bitbucket.org"
)

// commitPattern accepts full and abbreviated hex commit hashes.
var commitPattern = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// Ref locates a span of lines in one file at one commit.
type Ref struct {
	// Host is the hosting service domain. Empty defaults to GitHub.
	Host string

	Owner  string
	Repo   string
	Commit string

	// Path is the repo-relative file path.
	Path string

	// Line and EndLine select the highlighted span, 1-based. EndLine zero
	// means a single line; Line zero links to the whole file.
	Line    int
	EndLine int
}

// Layout renders the path-and-fragment part of a link for one hosting
// service. Inputs arrive pre-sanitized.
type Layout func(owner, repo, commit, path string, line, endLine int) string

var (
	layoutMu sync.RWMutex
	layouts  = map[string]Layout{
		GitHub:    githubLayout,
		GitLab:    gitlabLayout,
		Bitbucket: bitbucketLayout,
	}
)

// RegisterHost installs a layout for a custom host, such as a self-hosted
// GitLab. Later registrations replace earlier ones.
func RegisterHost(host string, layout Layout) {
	layoutMu.Lock()
	defer layoutMu.Unlock()
	layouts[strings.ToLower(host)] = layout
}

// URL renders the deep link. ok is false when any required component is
// missing or fails sanitization; a partial or unsafe link is never
// returned.
func (r Ref) URL() (string, bool) {
	host := strings.ToLower(r.Host)
	if host == "" {
		host = GitHub
	}

	layoutMu.RLock()
	layout, known := layouts[host]
	layoutMu.RUnlock()
	if !known {
		return "", false
	}

	owner, ok := iri.SafeSegment(r.Owner)
	if !ok {
		return "", false
	}
	repo, ok := iri.SafeSegment(r.Repo)
	if !ok {
		return "", false
	}
	if !commitPattern.MatchString(r.Commit) {
		return "", false
	}
	path, ok := iri.CleanPath(r.Path)
	if !ok {
		return "", false
	}
	if r.Line < 0 || r.EndLine < 0 || (r.EndLine > 0 && r.EndLine < r.Line) {
		return "", false
	}

	return "https://" + host + "/" + layout(owner, repo, r.Commit, path, r.Line, r.EndLine), true
}

func githubLayout(owner, repo, commit, path string, line, endLine int) string {
	u := fmt.Sprintf("%s/%s/blob/%s/%s", owner, repo, commit, path)
	switch {
	case line > 0 && endLine > line:
		u += fmt.Sprintf("#L%d-L%d", line, endLine)
	case line > 0:
		u += fmt.Sprintf("#L%d", line)
	}
	return u
}

func gitlabLayout(owner, repo, commit, path string, line, endLine int) string {
	u := fmt.Sprintf("%s/%s/-/blob/%s/%s", owner, repo, commit, path)
	switch {
	case line > 0 && endLine > line:
		u += fmt.Sprintf("#L%d-%d", line, endLine)
	case line > 0:
		u += fmt.Sprintf("#L%d", line)
	}
	return u
}

func bitbucketLayout(owner, repo, commit, path string, line, endLine int) string {
	u := fmt.Sprintf("%s/%s/src/%s/%s", owner, repo, commit, path)
	switch {
	case line > 0 && endLine > line:
		u += fmt.Sprintf("#lines-%d:%d", line, endLine)
	case line > 0:
		u += fmt.Sprintf("#lines-%d", line)
	}
	return u
}
