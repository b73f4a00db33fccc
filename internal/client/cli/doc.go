// Package cli provides the interactive nYtevibe command-line client.
//
// It wires configuration, the SQLite credential record, the REST auth
// service, the application state store and the session monitor, then runs
// a REPL on stdin. Notifications raised by the store are printed as they
// appear.
//
// Key features:
//   - Register / Login / Logout, with "remember me"
//   - Restoring the stored session at startup
//   - Password reset and email verification from pasted links
//   - Debounced username, email and phone availability checks
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
