package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	Upload(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Download(ctx context.Context, id string) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// runREPL reads commands from r until EOF, "exit" or "quit". Commands that
// act on a record take its id as the only argument. Handler errors are
// printed and the loop goes on.
//
//	Not logged in: help, register, login, exit
//	Logged in:     help, profile, upload, (l)ist, show <id>, download <id>,
//	               edit <id>, delete <id>, logout, exit
func runREPL(ctx context.Context, a execIface, statusFn func() string, r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprintf(w, "mm%s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: profile, upload, (l)ist, show <id>, download <id>, edit <id>, delete <id>, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, exit")
			}
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			if !a.isLoggedIn() {
				fmt.Fprintln(w, "Unknown command or not logged in:", cmd)
				continue
			}
			err = dispatchRecordCommand(ctx, a, cmd, args, w)
		}

		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	}
}

func dispatchRecordCommand(ctx context.Context, a execIface, cmd string, args []string, w io.Writer) error {
	withID := func(f func(context.Context, string) error) error {
		if len(args) != 1 {
			fmt.Fprintf(w, "Usage: %s <id>\n", cmd)
			return nil
		}
		return f(ctx, args[0])
	}

	switch cmd {
	case "profile":
		return a.Profile(ctx)
	case "upload":
		return a.Upload(ctx)
	case "l", "list":
		return a.List(ctx)
	case "show":
		return withID(a.Show)
	case "download":
		return withID(a.Download)
	case "edit":
		return withID(a.Edit)
	case "delete":
		return withID(a.Delete)
	case "logout":
		return a.Logout(ctx)
	default:
		fmt.Fprintln(w, "Unknown command:", cmd)
		return nil
	}
}
