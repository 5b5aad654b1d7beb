// Package cli provides the interactive sessionkeeper shell.
//
// It wires configuration, the session backend client, the auth service and
// a small router into a REPL. On start the shell resolves the current
// session once, renders a header, and then accepts commands.
//
// Key features:
//   - Header with the signed-in user and session expiry
//   - Toast notifications on sign-in and sign-out
//   - Confirmation before sign-out
//   - Automatic sign-out shortly before the token expires
//
// The shell is started via App.Run(ctx, in), which blocks until the user
// exits. See NewRootCommand for the cobra command tree.
package cli
