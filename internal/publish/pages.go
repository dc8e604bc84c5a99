package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/doccpub/internal/config"
	"git.home.luguber.info/inful/doccpub/internal/gitsource"
	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// PagesPublisher publishes the site tree to a pages branch.
//
// Upload initializes a throwaway repository inside the site tree and commits
// everything; Deploy force-pushes that single commit to the configured branch.
// History on the pages branch is deliberately not preserved: the site is a
// derived artifact.
type PagesPublisher struct {
	cfg         config.PublishConfig
	projectRoot string

	repo    *git.Repository
	siteDir string
}

// NewPagesPublisher creates a pages publisher. projectRoot is used to resolve
// a remote name into a push URL.
func NewPagesPublisher(cfg config.PublishConfig, projectRoot string) *PagesPublisher {
	return &PagesPublisher{cfg: cfg, projectRoot: projectRoot}
}

func (p *PagesPublisher) Describe() string {
	return fmt.Sprintf("pages branch %s on %s", p.cfg.Branch, p.cfg.Remote)
}

// Upload commits the site tree into a fresh repository.
func (p *PagesPublisher) Upload(_ context.Context, siteDir string) error {
	// A reused site tree still carries the previous publish's artifact
	// repository, which would make init fail.
	if err := os.RemoveAll(filepath.Join(siteDir, ".git")); err != nil {
		return fmt.Errorf("failed to clear previous artifact repository: %w", err)
	}

	repo, err := git.PlainInit(siteDir, false)
	if err != nil {
		return fmt.Errorf("failed to init artifact repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage site tree: %w", err)
	}

	commit, err := wt.Commit("Publish documentation site", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "doccpub",
			Email: "doccpub@luguber.info",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit site tree: %w", err)
	}

	slog.Info("Site artifact staged",
		logfields.Path(siteDir),
		slog.String("commit", commit.String()[:8]))
	p.repo = repo
	p.siteDir = siteDir
	return nil
}

// Deploy force-pushes the staged commit to the pages branch.
func (p *PagesPublisher) Deploy(ctx context.Context) error {
	if p.repo == nil {
		return fmt.Errorf("deploy called before a successful upload")
	}

	pushURL, err := p.resolvePushURL()
	if err != nil {
		return err
	}

	if _, err := p.repo.CreateRemote(&gitcfg.RemoteConfig{
		Name: "deploy",
		URLs: []string{pushURL},
	}); err != nil {
		return fmt.Errorf("failed to configure deploy remote: %w", err)
	}

	auth, err := gitsource.CreateAuth(p.cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to set up push authentication: %w", err)
	}

	refSpec := gitcfg.RefSpec(fmt.Sprintf("+HEAD:refs/heads/%s", p.cfg.Branch))
	slog.Info("Deploying site",
		logfields.URL(pushURL),
		logfields.Branch(p.cfg.Branch))
	if err := p.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "deploy",
		RefSpecs:   []gitcfg.RefSpec{refSpec},
		Auth:       auth,
		Force:      true,
	}); err != nil {
		return fmt.Errorf("failed to push site to %s: %w", p.cfg.Branch, err)
	}

	slog.Info("Site deployed", logfields.Branch(p.cfg.Branch))
	return nil
}

// resolvePushURL turns the configured remote into a concrete URL. A remote
// that already looks like a URL is used verbatim; otherwise it is looked up
// in the project checkout.
func (p *PagesPublisher) resolvePushURL() (string, error) {
	remote := p.cfg.Remote
	if strings.Contains(remote, "://") || strings.Contains(remote, "@") {
		return remote, nil
	}

	projRepo, err := git.PlainOpen(p.projectRoot)
	if err != nil {
		return "", fmt.Errorf("failed to open project repository %s: %w", p.projectRoot, err)
	}
	r, err := projRepo.Remote(remote)
	if err != nil {
		return "", fmt.Errorf("remote %q not found in project repository: %w", remote, err)
	}
	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL", remote)
	}
	return urls[0], nil
}
