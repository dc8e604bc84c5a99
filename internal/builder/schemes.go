package builder

import (
	"context"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/doccpub/internal/project"
	"git.home.luguber.info/inful/doccpub/internal/runner"
)

// schemeList mirrors the JSON emitted by `xcodebuild -list -json`.
// Schemes appear under "project" for .xcodeproj and "workspace" for
// .xcworkspace; both shapes are accepted.
type schemeList struct {
	Project struct {
		Schemes []string `json:"schemes"`
	} `json:"project"`
	Workspace struct {
		Schemes []string `json:"schemes"`
	} `json:"workspace"`
}

// ListSchemes enumerates the project's build schemes in xcodebuild's own
// listing order. The order matters: the first scheme is the selection
// tie-break for unconfigured runs.
func (b *Builder) ListSchemes(ctx context.Context, desc *project.Descriptor) ([]string, error) {
	res, err := b.run.Run(ctx, runner.Command{
		Program: b.tc.Xcodebuild,
		Args:    []string{"-list", "-json", "-project", desc.ProjectPath},
		Dir:     desc.Root,
		Env:     b.tc.Env(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list schemes: %w", err)
	}

	var list schemeList
	if err := json.Unmarshal([]byte(res.Stdout), &list); err != nil {
		return nil, fmt.Errorf("failed to parse scheme listing: %w", err)
	}

	schemes := list.Project.Schemes
	if len(schemes) == 0 {
		schemes = list.Workspace.Schemes
	}
	return schemes, nil
}
