// Package handlers declares the JSON API of mailcraft.
//
// Handlers resolve the caller with identity.FromContext, call the services
// and return errors unchanged; ErrorHandler turns them into the error
// envelope:
//
//	{"success": false, "message": "...", "errors": {"field": ["..."]}, "details": "..."}
package handlers
