// Package publish uploads a packaged site tree to its deployment target.
//
// Every backend runs two sub-steps: Upload stages the artifact, Deploy makes
// it live. There is no rollback; a failure after a successful upload leaves
// the target partially completed and is reported as such.
package publish
