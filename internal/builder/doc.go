// Package builder invokes the documentation compiler for a detected project.
//
// Swift packages go through the package manager's documentation plugin and
// write a hosting-ready tree directly. Xcode projects go through xcodebuild's
// docbuild action against a generic simulator destination and yield a
// .doccarchive under derived data, which the site packager transforms later.
// The two paths are mutually exclusive; any non-zero tool exit aborts the run.
package builder
