package gitsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// Client fetches the configured project repository into the workspace.
type Client struct {
	workspaceDir string
	shallowDepth int
}

// NewClient creates a client that materializes checkouts under workspaceDir.
func NewClient(workspaceDir string, shallowDepth int) *Client {
	return &Client{workspaceDir: workspaceDir, shallowDepth: shallowDepth}
}

// Fetch materializes the project checkout and returns its path. An existing
// checkout is updated in place; anything else is a fresh clone.
func (c *Client) Fetch(ctx context.Context, proj config.ProjectConfig) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, "project")
	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		return c.update(ctx, repoPath, proj)
	}
	return c.clone(ctx, repoPath, proj)
}

func (c *Client) clone(ctx context.Context, repoPath string, proj config.ProjectConfig) (string, error) {
	slog.Info("Cloning project", logfields.URL(proj.URL), logfields.Branch(proj.Branch))
	if err := os.RemoveAll(repoPath); err != nil {
		return "", fmt.Errorf("failed to remove existing directory: %w", err)
	}

	opts := &git.CloneOptions{URL: proj.URL}
	if proj.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + proj.Branch)
		opts.SingleBranch = true
	}
	if c.shallowDepth > 0 {
		opts.Depth = c.shallowDepth
	}
	if proj.Auth != nil {
		auth, err := CreateAuth(proj.Auth)
		if err != nil {
			return "", fmt.Errorf("failed to setup authentication: %w", err)
		}
		opts.Auth = auth
	}

	repo, err := git.PlainCloneContext(ctx, repoPath, false, opts)
	if err != nil {
		return "", fmt.Errorf("failed to clone %s: %w", proj.URL, err)
	}

	if ref, herr := repo.Head(); herr == nil {
		slog.Info("Project cloned",
			logfields.URL(proj.URL),
			slog.String("commit", ref.Hash().String()[:8]),
			logfields.Path(repoPath))
	}
	return repoPath, nil
}

func (c *Client) update(ctx context.Context, repoPath string, proj config.ProjectConfig) (string, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		slog.Warn("Existing checkout unreadable, recloning", logfields.Path(repoPath), logfields.Error(err))
		return c.clone(ctx, repoPath, proj)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}

	pullOpts := &git.PullOptions{RemoteName: "origin"}
	if proj.Branch != "" {
		pullOpts.ReferenceName = plumbing.ReferenceName("refs/heads/" + proj.Branch)
		pullOpts.SingleBranch = true
	}
	if proj.Auth != nil {
		auth, aerr := CreateAuth(proj.Auth)
		if aerr != nil {
			return "", fmt.Errorf("failed to setup authentication: %w", aerr)
		}
		pullOpts.Auth = auth
	}

	err = wt.PullContext(ctx, pullOpts)
	switch {
	case err == nil:
		slog.Info("Project updated", logfields.Path(repoPath))
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		slog.Debug("Project already up to date", logfields.Path(repoPath))
	default:
		// A diverged or corrupted checkout is discarded; the next run starts
		// from a clean clone.
		slog.Warn("Pull failed, recloning", logfields.Path(repoPath), logfields.Error(err))
		return c.clone(ctx, repoPath, proj)
	}
	return repoPath, nil
}
