package gitsource

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/doccpub/internal/config"
)

func TestCreateAuth(t *testing.T) {
	tests := []struct {
		name        string
		authConfig  *config.AuthConfig
		expectNil   bool
		expectError bool
	}{
		{
			name:       "nil config",
			authConfig: nil,
			expectNil:  true,
		},
		{
			name:       "none auth",
			authConfig: &config.AuthConfig{Type: "none"},
			expectNil:  true,
		},
		{
			name:       "token auth valid",
			authConfig: &config.AuthConfig{Type: AuthTypeToken, Token: "test-token"},
		},
		{
			name:        "token auth missing token",
			authConfig:  &config.AuthConfig{Type: AuthTypeToken},
			expectNil:   true,
			expectError: true,
		},
		{
			name:       "basic auth valid",
			authConfig: &config.AuthConfig{Type: AuthTypeBasic, Username: "u", Password: "p"},
		},
		{
			name:        "basic auth missing username",
			authConfig:  &config.AuthConfig{Type: AuthTypeBasic, Password: "p"},
			expectNil:   true,
			expectError: true,
		},
		{
			name:        "ssh auth missing key path",
			authConfig:  &config.AuthConfig{Type: AuthTypeSSH},
			expectNil:   true,
			expectError: true,
		},
		{
			name:        "unsupported auth type",
			authConfig:  &config.AuthConfig{Type: "kerberos"},
			expectNil:   true,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := CreateAuth(tt.authConfig)

			if tt.expectError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectNil && auth != nil {
				t.Errorf("expected nil auth, got %T", auth)
			}
		})
	}
}

func TestCreateAuth_TokenDefaultsUsername(t *testing.T) {
	auth, err := CreateAuth(&config.AuthConfig{Type: AuthTypeToken, Token: "secret"})
	if err != nil {
		t.Fatalf("CreateAuth() failed: %v", err)
	}
	basic, ok := auth.(*http.BasicAuth)
	if !ok {
		t.Fatalf("expected *http.BasicAuth, got %T", auth)
	}
	if basic.Username != "token" || basic.Password != "secret" {
		t.Errorf("unexpected credentials %+v", basic)
	}
}
