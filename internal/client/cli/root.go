package cli

import (
	"context"
	"fmt"
)

// getStatus renders "(email mode)" for the prompt.
func (a *App) getStatus() string {
	s := ""
	if a.auth != nil {
		if sess := a.auth.CurrentSession(); sess != nil {
			s = sess.Email + " "
		}
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root prints the greeting and runs the REPL. Commands and prompts share
// a.reader so no input is lost between them.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to UserDash CLI (type 'help' for commands)")
	if !a.isLoggedIn() {
		printlnFn("Sign in with 'login' or create an account with 'signup'.")
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
