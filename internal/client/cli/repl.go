package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	ForgotPassword(ctx context.Context) error
	OpenLink(ctx context.Context, raw string) error
	ResendVerification(ctx context.Context) error
	Check(field, value string) error
	Focus(ctx context.Context) error
}

const (
	helpGuest = "Available commands: register, login, forgot, open <link>, resend, check <username|email|phone> <value>, exit"
	helpUser  = "Available commands: status, logout, open <link>, resend, focus, check <username|email|phone> <value>, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit", or until
// ctx is canceled between commands. Prompts of individual commands read
// from the same reader, so typed answers are never swallowed by the loop.
//
// Commands:
//
//	Not logged in:
//	  - register            create an account
//	  - login               sign in
//	  - forgot              request a password reset link
//
//	Logged in:
//	  - status | whoami     show the profile and session expiry
//	  - logout              end the session
//	  - focus               re-check the session now
//
//	Always:
//	  - open | reset | verify <link>   handle an emailed link
//	  - resend              request a new verification email
//	  - check <field> <v>   availability of a username, email or phone
//	  - help, exit | quit
//
// Errors returned by command handlers are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("nv %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpUser)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "status", "whoami":
			cmdErr = a.Status(ctx)

		case "forgot":
			cmdErr = a.ForgotPassword(ctx)

		case "open", "reset", "verify":
			if len(args) == 0 {
				printlnFn("Usage:", cmd, "<link>")
				continue
			}
			cmdErr = a.OpenLink(ctx, args[0])

		case "resend":
			cmdErr = a.ResendVerification(ctx)

		case "check":
			if len(args) < 2 {
				printlnFn("Usage: check <username|email|phone> <value>")
				continue
			}
			cmdErr = a.Check(args[0], strings.Join(args[1:], " "))

		case "focus":
			cmdErr = a.Focus(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
