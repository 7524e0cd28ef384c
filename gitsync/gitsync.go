// Package gitsync keeps a local content directory in step with a remote
// Git repository. The directory is cloned on first use and fast-forward
// pulled afterwards; callers learn whether anything changed so they can
// rescan only when needed.
package gitsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/rs/zerolog"
)

// Remote identifies the repository to sync from. Token is optional and
// used as an HTTP basic-auth password when set.
type Remote struct {
	URL    string
	Branch string
	Token  string
}

// SyncResult describes what a Sync did.
type SyncResult struct {
	Head    string
	Changed bool
	Cloned  bool
}

// Client syncs one directory against one remote.
type Client struct {
	Dir string
	Log zerolog.Logger
}

// Sync clones the remote into the client directory if it is not a
// repository yet, otherwise pulls the configured branch. Already
// up-to-date is not an error.
func (c *Client) Sync(ctx context.Context, remote Remote) (SyncResult, error) {
	if remote.URL == "" {
		return SyncResult{}, errors.New("gitsync: remote URL is empty")
	}

	repo, err := git.PlainOpen(c.Dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return c.clone(ctx, remote)
	}
	if err != nil {
		return SyncResult{}, fmt.Errorf("gitsync: open %s: %w", c.Dir, err)
	}
	return c.pull(ctx, repo, remote)
}

func (c *Client) clone(ctx context.Context, remote Remote) (SyncResult, error) {
	c.Log.Info().Str("url", remote.URL).Str("dir", c.Dir).Msg("cloning content repository")

	opts := &git.CloneOptions{URL: remote.URL, Auth: auth(remote)}
	if remote.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(remote.Branch)
		opts.SingleBranch = true
	}
	repo, err := git.PlainCloneContext(ctx, c.Dir, false, opts)
	if err != nil {
		return SyncResult{}, classify("clone", remote.URL, err)
	}
	head, err := headHash(repo)
	if err != nil {
		return SyncResult{}, err
	}
	c.Log.Info().Str("head", short(head)).Msg("content repository cloned")
	return SyncResult{Head: head, Changed: true, Cloned: true}, nil
}

func (c *Client) pull(ctx context.Context, repo *git.Repository, remote Remote) (SyncResult, error) {
	before, err := headHash(repo)
	if err != nil {
		return SyncResult{}, err
	}

	wt, err := repo.Worktree()
	if err != nil {
		return SyncResult{}, fmt.Errorf("gitsync: worktree: %w", err)
	}
	opts := &git.PullOptions{RemoteName: "origin", Auth: auth(remote)}
	if remote.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(remote.Branch)
		opts.SingleBranch = true
	}
	err = wt.PullContext(ctx, opts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		c.Log.Debug().Str("head", short(before)).Msg("content repository up to date")
		return SyncResult{Head: before}, nil
	}
	if err != nil {
		return SyncResult{}, classify("pull", remote.URL, err)
	}

	after, err := headHash(repo)
	if err != nil {
		return SyncResult{}, err
	}
	c.Log.Info().Str("from", short(before)).Str("to", short(after)).Msg("content repository updated")
	return SyncResult{Head: after, Changed: after != before}, nil
}

// Head returns the current commit hash of the local repository.
func (c *Client) Head() (string, error) {
	repo, err := git.PlainOpen(c.Dir)
	if err != nil {
		return "", fmt.Errorf("gitsync: open %s: %w", c.Dir, err)
	}
	return headHash(repo)
}

func headHash(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("gitsync: head: %w", err)
	}
	return ref.Hash().String(), nil
}

func auth(remote Remote) *http.BasicAuth {
	if remote.Token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "git", Password: remote.Token}
}

func short(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
