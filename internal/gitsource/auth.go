package gitsource

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"git.home.luguber.info/inful/doccpub/internal/config"
)

// Auth type identifiers accepted in configuration.
const (
	AuthTypeNone  = ""
	AuthTypeSSH   = "ssh"
	AuthTypeToken = "token"
	AuthTypeBasic = "basic"
)

// CreateAuth returns a go-git AuthMethod for the given configuration.
// A nil config means anonymous access.
func CreateAuth(authCfg *config.AuthConfig) (transport.AuthMethod, error) {
	if authCfg == nil {
		return nil, nil
	}

	switch authCfg.Type {
	case AuthTypeNone, "none":
		return nil, nil
	case AuthTypeToken:
		if authCfg.Token == "" {
			return nil, fmt.Errorf("token auth requires a token")
		}
		username := authCfg.Username
		if username == "" {
			// Forges accept any non-empty username for token auth.
			username = "token"
		}
		return &http.BasicAuth{Username: username, Password: authCfg.Token}, nil
	case AuthTypeBasic:
		if authCfg.Username == "" {
			return nil, fmt.Errorf("basic auth requires a username")
		}
		return &http.BasicAuth{Username: authCfg.Username, Password: authCfg.Password}, nil
	case AuthTypeSSH:
		if authCfg.KeyPath == "" {
			return nil, fmt.Errorf("ssh auth requires key_path")
		}
		keys, err := ssh.NewPublicKeysFromFile("git", authCfg.KeyPath, authCfg.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to load ssh key %s: %w", authCfg.KeyPath, err)
		}
		return keys, nil
	default:
		return nil, fmt.Errorf("unsupported auth type %q", authCfg.Type)
	}
}
