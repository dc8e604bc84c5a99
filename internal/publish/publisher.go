package publish

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/doccpub/internal/config"
)

// Publisher deploys a packaged site tree.
type Publisher interface {
	// Upload stages the site tree as a deployable artifact.
	Upload(ctx context.Context, siteDir string) error
	// Deploy makes the uploaded artifact live. Calling Deploy before a
	// successful Upload is an error.
	Deploy(ctx context.Context) error
	// Describe names the deployment target for logs.
	Describe() string
}

// New selects a Publisher backend from configuration.
func New(cfg config.PublishConfig, projectRoot string) (Publisher, error) {
	switch cfg.Target {
	case "pages":
		return NewPagesPublisher(cfg, projectRoot), nil
	case "dir":
		return NewDirPublisher(cfg.Dir), nil
	case "none":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown publish target %q", cfg.Target)
	}
}

// NopPublisher is used when publishing is disabled (target "none").
type NopPublisher struct{}

func (NopPublisher) Upload(context.Context, string) error { return nil }
func (NopPublisher) Deploy(context.Context) error         { return nil }
func (NopPublisher) Describe() string                     { return "none" }
