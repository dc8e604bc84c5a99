// Package gitsource fetches the target project into the workspace when it is
// configured as a remote repository rather than a local checkout, and supplies
// go-git authentication for clones and pushes.
package gitsource
