package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// branchPattern matches ticket branches: <segment>/<id>_<slug>
var branchPattern = regexp.MustCompile(`\w+/(\d+)_.*`)

// urlPattern matches ticket links: http(s)://<host>/entity/<id><slug>
var urlPattern = regexp.MustCompile(`^https?://[\w.-]+(?::\d+)?/entity/(\d+)([\w+-]*)(?:[?#].*)?$`)

// commitScopePattern matches conventional commit subjects: <type>(<id>): ...
var commitScopePattern = regexp.MustCompile(`^\w+\((\d+)\)!?:`)

// digitRun matches the first run of digits in a branch segment.
var digitRun = regexp.MustCompile(`\d+`)

// branchStripChars are removed from ticket names when building a branch slug.
const branchStripChars = `()[]{},"/.;:'-_`

// TicketIDFromBranch extracts the ticket ID from a branch name.
// Returns the ID and true if the branch follows the <segment>/<id>_<slug>
// convention, or 0 and false if not.
func TicketIDFromBranch(branch string) (int, bool) {
	return parseIDMatch(branchPattern.FindStringSubmatch(branch))
}

// TicketIDFromCommit extracts the ticket ID from a commit subject, either
// from a conventional commit scope or from a merged branch name.
func TicketIDFromCommit(subject string) (int, bool) {
	subject = strings.TrimSpace(subject)
	if id, ok := parseIDMatch(commitScopePattern.FindStringSubmatch(subject)); ok {
		return id, true
	}
	return TicketIDFromBranch(subject)
}

// TicketIDFromURL extracts the ticket ID from a TargetProcess entity link.
func TicketIDFromURL(url string) (int, bool) {
	return parseIDMatch(urlPattern.FindStringSubmatch(strings.TrimSpace(url)))
}

// ResolveTicketID accepts a bare ID, an entity link or a branch name.
func ResolveTicketID(idOrURL string) (int, bool) {
	s := strings.TrimSpace(idOrURL)
	if s == "" {
		return 0, false
	}
	if id, err := strconv.Atoi(s); err == nil {
		if id <= 0 {
			return 0, false
		}
		return id, true
	}
	if id, ok := TicketIDFromURL(s); ok {
		return id, true
	}
	return TicketIDFromBranch(s)
}

func parseIDMatch(matches []string) (int, bool) {
	if len(matches) < 2 {
		return 0, false
	}
	id, err := strconv.Atoi(matches[1])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// BranchToTitle derives a human readable title from a ticket branch.
// "feature/115068_translate_report_type" becomes "Translate report type".
func BranchToTitle(branch string) string {
	segment := branch
	if i := strings.LastIndex(branch, "/"); i >= 0 {
		segment = branch[i+1:]
	}

	if loc := digitRun.FindStringIndex(segment); loc != nil {
		segment = segment[:loc[0]] + segment[loc[1]:]
	}
	title := strings.TrimSpace(strings.ReplaceAll(segment, "_", " "))
	if title == "" {
		return ""
	}

	r, size := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(r)) + title[size:]
}

// TicketBranchName returns the branch name for a ticket: <id>_<slug>.
func TicketBranchName(id int, name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if strings.ContainsRune(branchStripChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	slug := strings.ReplaceAll(b.String(), " ", "_")
	return fmt.Sprintf("%d_%s", id, slug)
}

// FeatureBranch returns the git-flow feature branch for a branch name.
func FeatureBranch(name string) string {
	return "feature/" + name
}

// ReleaseBranch returns the git-flow release branch for a version.
func ReleaseBranch(version string) string {
	return "release/" + version
}

// TicketLink returns the web link of a ticket.
func TicketLink(baseURL string, id int) string {
	return fmt.Sprintf("%s/entity/%d", strings.TrimRight(baseURL, "/"), id)
}

// PullRequestLink returns the CodeCommit console link of a pull request.
func PullRequestLink(region, repository, id string) string {
	return fmt.Sprintf(
		"https://%s.console.aws.amazon.com/codesuite/codecommit/repositories/%s/pull-requests/%s/details",
		region, repository, id,
	)
}

// RepositoryFromRemote extracts the repository name from a remote URL.
func RepositoryFromRemote(remote string) string {
	remote = strings.TrimRight(strings.TrimSpace(remote), "/")
	if i := strings.LastIndex(remote, "/"); i >= 0 {
		remote = remote[i+1:]
	}
	return strings.TrimSuffix(remote, ".git")
}
