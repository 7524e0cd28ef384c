package gitsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func initOrigin(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	commitFile(t, repo, dir, "hello.md", "# hello\n")
	return dir, repo
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	hash, err := wt.Commit("add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash.String()
}

func TestSyncClonesThenPulls(t *testing.T) {
	originDir, origin := initOrigin(t)
	client := &Client{Dir: t.TempDir(), Log: zerolog.Nop()}
	remote := Remote{URL: originDir}

	res, err := client.Sync(context.Background(), remote)
	require.NoError(t, err)
	require.True(t, res.Cloned)
	require.True(t, res.Changed)
	require.NotEmpty(t, res.Head)

	// Nothing new upstream.
	res, err = client.Sync(context.Background(), remote)
	require.NoError(t, err)
	require.False(t, res.Cloned)
	require.False(t, res.Changed)

	want := commitFile(t, origin, originDir, "second.md", "# second\n")
	res, err = client.Sync(context.Background(), remote)
	require.NoError(t, err)
	require.False(t, res.Cloned)
	require.True(t, res.Changed)
	require.Equal(t, want, res.Head)

	head, err := client.Head()
	require.NoError(t, err)
	require.Equal(t, want, head)
}

func TestSyncEmptyURL(t *testing.T) {
	client := &Client{Dir: t.TempDir(), Log: zerolog.Nop()}
	_, err := client.Sync(context.Background(), Remote{})
	require.Error(t, err)
}

func TestSyncMissingRemote(t *testing.T) {
	client := &Client{Dir: t.TempDir(), Log: zerolog.Nop()}
	_, err := client.Sync(context.Background(), Remote{URL: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}
