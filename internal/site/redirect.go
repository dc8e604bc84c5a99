package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const redirectTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta http-equiv="refresh" content="0; url=%s">
    <title>%s</title>
</head>
<body>
    <p>Redirecting to <a href="%s">documentation</a>.</p>
</body>
</html>
`

// RedirectTarget returns the documentation subpath the root page forwards to.
func RedirectTarget(scheme string) string {
	return "/documentation/" + scheme
}

// ValidateScheme rejects scheme names that would produce an unsafe redirect
// path. Schemes are plain identifiers; separators and traversal sequences
// have no legal place in them.
func ValidateScheme(scheme string) error {
	if scheme == "" {
		return fmt.Errorf("scheme name is empty")
	}
	if strings.Contains(scheme, "..") {
		return fmt.Errorf("scheme name %q contains a traversal sequence", scheme)
	}
	for _, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return fmt.Errorf("scheme name %q contains path-unsafe character %q", scheme, r)
		}
	}
	return nil
}

// WriteRedirect writes the root index.html forwarding to the scheme's
// documentation subpath.
func WriteRedirect(outputDir, scheme, title string) error {
	if err := ValidateScheme(scheme); err != nil {
		return err
	}
	if title == "" {
		title = scheme + " Documentation"
	}

	target := RedirectTarget(scheme)
	content := fmt.Sprintf(redirectTemplate, target, title, target)

	path := filepath.Join(outputDir, "index.html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write redirect page: %w", err)
	}
	return nil
}
