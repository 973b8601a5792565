package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Details(ctx context.Context) error
	Contact(ctx context.Context) error
	Profile(ctx context.Context) error
	List(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Sync(ctx context.Context) error
	Export(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the UserDash CLI.
//
// It reads a line from reader, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on EOF, when ctx is done, or when
// the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always:
//	  - help           show available commands
//	  - (l)ist         list cached users
//	  - dashboard      monthly signups chart
//	  - sync           pull remote users into the cache
//	  - export         upload the dashboard to object storage
//	  - exit | quit    leave the program
//
//	Not logged in:
//	  - signup         create an account
//	  - login          authenticate
//
//	Logged in:
//	  - details        submit name and contact
//	  - contact        change contact
//	  - profile        show own record
//	  - logout         log out
//
// Errors returned by command handlers are ignored here; handlers print
// user-facing messages and log details themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("ud %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: details, contact, profile, (l)ist, dashboard, sync, export, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, (l)ist, dashboard, sync, export, exit")
			}

		case "signup", "register":
			_ = a.SignUp(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "details":
			_ = a.Details(ctx)

		case "contact":
			_ = a.Contact(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "dashboard":
			_ = a.Dashboard(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "export":
			_ = a.Export(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
