// Package templates persists email template designs.
//
// A Template is metadata (name, subject, owner, autosave flag) with exactly
// one Content record holding the design document and the rendered HTML.
// The Service applies ownership rules and validation on top of a
// Repository; Postgres is the production repository and Memory backs tests.
//
// Ownership is a deployment switch. With enforcement on, every call is
// scoped to the principal's templates. With it off, the store behaves as a
// single shared workspace.
package templates
