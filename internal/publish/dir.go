package publish

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/doccpub/internal/logfields"
)

// DirPublisher deploys to a directory served by a plain file server.
// Upload stages the tree next to the destination; Deploy swaps it in.
type DirPublisher struct {
	dest    string
	staging string
}

// NewDirPublisher creates a directory publisher.
func NewDirPublisher(dest string) *DirPublisher {
	return &DirPublisher{dest: dest}
}

func (p *DirPublisher) Describe() string { return "directory " + p.dest }

// Upload copies the site tree into a staging directory beside the target.
func (p *DirPublisher) Upload(_ context.Context, siteDir string) error {
	staging := p.dest + ".staging"
	if err := os.RemoveAll(staging); err != nil {
		return fmt.Errorf("failed to clear staging directory: %w", err)
	}
	if err := copyTree(siteDir, staging); err != nil {
		return fmt.Errorf("failed to stage site tree: %w", err)
	}
	p.staging = staging
	slog.Info("Site artifact staged", logfields.Path(staging))
	return nil
}

// Deploy replaces the destination with the staged tree.
func (p *DirPublisher) Deploy(_ context.Context) error {
	if p.staging == "" {
		return fmt.Errorf("deploy called before a successful upload")
	}
	if err := os.RemoveAll(p.dest); err != nil {
		return fmt.Errorf("failed to remove previous deployment: %w", err)
	}
	if err := os.Rename(p.staging, p.dest); err != nil {
		return fmt.Errorf("failed to activate staged site: %w", err)
	}
	slog.Info("Site deployed", logfields.Path(p.dest))
	p.staging = ""
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, in)
		return err
	})
}
