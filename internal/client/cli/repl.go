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
	flushToasts()
	Whoami(ctx context.Context) error
	Groups(ctx context.Context) error
	HasRole(ctx context.Context, role string) error
	Status(ctx context.Context) error
	Token(ctx context.Context) error
	Home(ctx context.Context) error
	Signout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the sessionkeeper shell.
//
// Pending toasts are shown before each prompt. The prompt shows the current
// status (from statusFn) and accepts commands:
//
//	help             show available commands
//	whoami           name and email of the current user
//	groups           groups of the current user
//	hasrole <role>   whether the current user has a role
//	status           authentication and expiry state
//	token            the full identity record
//	home             go to the home view
//	signout          sign out (asks for confirmation)
//	exit | quit      leave the program
//
// Command errors are printed and the loop continues. The loop exits on EOF,
// "exit" or "quit", or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		a.flushToasts()
		printlnFn(fmt.Sprintf("sk %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
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
			printlnFn("Available commands: whoami, groups, hasrole <role>, status, token, home, signout, exit")

		case "whoami":
			cmdErr = a.Whoami(ctx)

		case "groups":
			cmdErr = a.Groups(ctx)

		case "hasrole":
			if len(args) == 0 {
				printlnFn("Usage: hasrole <role>")
				continue
			}
			cmdErr = a.HasRole(ctx, args[0])

		case "status":
			cmdErr = a.Status(ctx)

		case "token":
			cmdErr = a.Token(ctx)

		case "home":
			cmdErr = a.Home(ctx)

		case "signout", "logout":
			cmdErr = a.Signout(ctx)

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
