package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# doccpub configuration
project:
  # Local checkout (default) or a remote repository to clone.
  path: .
  # url: https://git.example.com/team/MyKit.git
  # branch: main

build:
  # scheme: MyKit          # overrides first-listed scheme selection
  destination: "generic/platform=iOS Simulator"

site:
  assets_dir: Assets
  output_dir: docs

publish:
  target: pages            # pages | dir | none
  branch: gh-pages
  remote: origin

# daemon:
#   listen: ":8080"
#   webhook_secret: ${DOCCPUB_WEBHOOK_SECRET}
#   schedule: 1h
#   metrics: true

# history:
#   path: doccpub.db
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
