// Package site converts a documentation archive into a publishable static
// site tree: it applies the static-hosting transform for Xcode-produced
// archives, copies the fixed theme assets, and writes the root redirect page
// pointing at the selected scheme's documentation subpath.
//
// A missing assets directory is fatal; there is no fallback theme. Temporary
// build directories are cleaned up by the pipeline only after publish
// succeeds, so the uploaded tree always contains the assets it references.
package site
