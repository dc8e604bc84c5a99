package config

// Default values shared by Load and tests. Centralized so the init scaffold
// and the loader cannot drift.
const (
	DefaultDestination = "generic/platform=iOS Simulator"
	DefaultAssetsDir   = "Assets"
	DefaultOutputDir   = "docs"
	DefaultBranch      = "main"
	DefaultPagesBranch = "gh-pages"
	DefaultRemote      = "origin"
	DefaultListen      = ":8080"
	DefaultNATSSubject = "doccpub.runs"
)

func applyDefaults(c *Config) {
	if c.Project.Path == "" && c.Project.URL == "" {
		c.Project.Path = "."
	}
	if c.Project.Branch == "" {
		c.Project.Branch = DefaultBranch
	}
	if c.Build.Destination == "" {
		c.Build.Destination = DefaultDestination
	}
	if c.Site.AssetsDir == "" {
		c.Site.AssetsDir = DefaultAssetsDir
	}
	if c.Site.OutputDir == "" {
		c.Site.OutputDir = DefaultOutputDir
	}
	if c.Publish.Target == "" {
		c.Publish.Target = "pages"
	}
	if c.Publish.Branch == "" {
		c.Publish.Branch = DefaultPagesBranch
	}
	if c.Publish.Remote == "" {
		c.Publish.Remote = DefaultRemote
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = DefaultListen
	}
	if c.Daemon.NATS != nil && c.Daemon.NATS.Subject == "" {
		c.Daemon.NATS.Subject = DefaultNATSSubject
	}
}
