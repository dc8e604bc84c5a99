// Package project classifies a repository checkout as a Swift package or an
// Xcode project and selects the documentation build strategy accordingly.
//
// Classification happens once per run and is never revisited: a manifest
// (Package.swift) wins over a project file, and when several .xcodeproj
// bundles exist the lexically first one is chosen so repeated runs over the
// same snapshot always agree.
package project
