// Package git provides git and git-flow operations.
// Repository state is read with go-git; anything that talks to a remote or
// runs git-flow shells out to the git binary so user credentials and hooks
// apply.
package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/infra/executor"
)

// Client provides git operations.
type Client struct {
	repo     *gogit.Repository
	exec     domain.CommandExecutor
	repoRoot string
}

// Ensure Client implements domain.Git interface.
var _ domain.Git = (*Client)(nil)

// NewClient opens the repository containing dir.
func NewClient(dir string, exec domain.CommandExecutor) (*Client, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open git repository: %w", err)
	}

	root := dir
	if wt, wtErr := repo.Worktree(); wtErr == nil {
		root = wt.Filesystem.Root()
	}

	return &Client{repo: repo, exec: exec, repoRoot: root}, nil
}

// RepoRoot returns the repository root directory.
func (c *Client) RepoRoot() string {
	return c.repoRoot
}

// CurrentBranch returns the name of the current branch.
func (c *Client) CurrentBranch() (string, error) {
	head, err := c.repo.Head()
	if err == nil {
		if !head.Name().IsBranch() {
			return "", errors.New("HEAD is detached")
		}
		return head.Name().Short(), nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", fmt.Errorf("get current branch: %w", err)
	}

	// Unborn branch: HEAD points to a ref that has no commit yet.
	ref, refErr := c.repo.Reference(plumbing.HEAD, false)
	if refErr != nil {
		return "", fmt.Errorf("get current branch: %w", refErr)
	}
	return ref.Target().Short(), nil
}

// RemoteURL returns the first URL of a remote.
func (c *Client) RemoteURL(name string) (string, error) {
	remote, err := c.repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("get remote %s: %w", name, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no url", name)
	}
	return urls[0], nil
}

// ConfigValue returns a git config value, or "" if unset.
func (c *Client) ConfigValue(key string) (string, error) {
	out, err := c.git(context.Background(), "config", "--get", key)
	if err != nil {
		// Exit code 1 means the key is not set
		if executor.IsExitCode(err, 1) {
			return "", nil
		}
		return "", fmt.Errorf("read git config %s: %w", key, err)
	}
	return out, nil
}

// Fetch fetches from the default remote.
func (c *Client) Fetch(ctx context.Context, prune bool) error {
	args := []string{"fetch"}
	if prune {
		args = append(args, "--prune")
	}
	_, err := c.git(ctx, args...)
	return err
}

// Push pushes a refspec to a remote.
func (c *Client) Push(ctx context.Context, remote, refspec string, force bool) error {
	args := []string{"push"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, remote, refspec)
	_, err := c.git(ctx, args...)
	return err
}

// PushTags pushes all tags to a remote.
func (c *Client) PushTags(ctx context.Context, remote string) error {
	_, err := c.git(ctx, "push", remote, "--tags")
	return err
}

// DeleteRemoteBranch deletes a branch on a remote.
func (c *Client) DeleteRemoteBranch(ctx context.Context, remote, branch string) error {
	_, err := c.git(ctx, "push", remote, "--delete", branch)
	return err
}

// CommitSubjects returns the subjects of commits reachable from to but not from.
func (c *Client) CommitSubjects(ctx context.Context, from, to string) ([]string, error) {
	if to == "" {
		to = "HEAD"
	}
	out, err := c.git(ctx, "log", "--format=%s", from+".."+to)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// CommitFiles commits the current content of tracked paths, ignoring
// anything else that is staged.
func (c *Client) CommitFiles(ctx context.Context, message string, paths ...string) error {
	args := append([]string{"commit", "-m", message, "--"}, paths...)
	_, err := c.git(ctx, args...)
	return err
}

// FeatureStart runs git flow feature start.
func (c *Client) FeatureStart(ctx context.Context, name string) error {
	_, err := c.git(ctx, "flow", "feature", "start", name)
	return err
}

// FeatureFinish runs git flow feature finish. It may open an editor.
func (c *Client) FeatureFinish(ctx context.Context, name string) error {
	return c.gitInteractive(ctx, "flow", "feature", "finish", name)
}

// ReleaseStart runs git flow release start.
func (c *Client) ReleaseStart(ctx context.Context, version string) error {
	_, err := c.git(ctx, "flow", "release", "start", version)
	return err
}

// ReleaseFinish runs git flow release finish. It opens an editor for the
// merge and tag messages.
func (c *Client) ReleaseFinish(ctx context.Context, version string) error {
	return c.gitInteractive(ctx, "flow", "release", "finish", version)
}

func (c *Client) git(ctx context.Context, args ...string) (string, error) {
	cmd := domain.NewCommand("git", args...)
	cmd.Dir = c.repoRoot
	out, err := c.exec.Execute(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}

func (c *Client) gitInteractive(ctx context.Context, args ...string) error {
	cmd := domain.NewCommand("git", args...)
	cmd.Dir = c.repoRoot
	if err := c.exec.ExecuteInteractive(ctx, cmd); err != nil {
		return fmt.Errorf("git %s: %w", strings.Join(args[:2], " "), err)
	}
	return nil
}
