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
	WhoAmI(ctx context.Context) error
	Validate(ctx context.Context) error
	Jobs(ctx context.Context, args []string) error
	MyJobs(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Apply(ctx context.Context, args []string) error
	PostJob(ctx context.Context) error
	Profile(ctx context.Context, args []string) error
	Notifications(ctx context.Context) error
	Read(ctx context.Context, args []string) error
	Unread(ctx context.Context) error
	Sync(ctx context.Context) error
	Queue(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the marketplace CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                 show available commands
//	  - register             create an account
//	  - login                authenticate
//	  - jobs [page]          browse open jobs (cached copy when offline)
//	  - status               connectivity, realtime and queue summary
//	  - exit | quit          leave the program
//
//	Logged in, additionally:
//	  - whoami               show the signed-in profile
//	  - validate             check the session against the server
//	  - myjobs [page]        jobs posted by the signed-in client
//	  - show <id>            job details
//	  - apply <id>           apply to a job (queued when offline)
//	  - postjob              post a new job (queued when offline)
//	  - profile [edit]       show or edit the worker profile
//	  - notifications | n    list notifications
//	  - read <id>            mark a notification read
//	  - unread               unread notification count
//	  - sync                 replay the offline queue now
//	  - queue                list queued actions
//	  - logout               log out
//
// Errors returned by command handlers are reported to the user and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("market %s> ", statusFn()))
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
				printlnFn("Available commands: whoami, validate, jobs, myjobs, show, apply, postjob, profile, (n)otifications, read, unread, sync, queue, status, logout, exit")
			} else {
				printlnFn("Available commands: register, login, jobs, status, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "whoami":
			cmdErr = a.WhoAmI(ctx)

		case "validate":
			cmdErr = a.Validate(ctx)

		case "jobs":
			cmdErr = a.Jobs(ctx, args)

		case "myjobs":
			cmdErr = a.MyJobs(ctx, args)

		case "show":
			cmdErr = a.Show(ctx, args)

		case "apply":
			cmdErr = a.Apply(ctx, args)

		case "postjob":
			cmdErr = a.PostJob(ctx)

		case "profile":
			cmdErr = a.Profile(ctx, args)

		case "n", "notifications":
			cmdErr = a.Notifications(ctx)

		case "read":
			cmdErr = a.Read(ctx, args)

		case "unread":
			cmdErr = a.Unread(ctx)

		case "sync":
			cmdErr = a.Sync(ctx)

		case "queue":
			cmdErr = a.Queue(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", userMessage(cmdErr))
		}
		if err != nil {
			return
		}
	}
}
