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
	Touch()
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Stats(ctx context.Context) error
	Filter(ctx context.Context) error
	Estado(ctx context.Context, group string) error
	Buscar(ctx context.Context, term string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Baja(ctx context.Context, id string) error
	Del(ctx context.Context, id string) error
	Hist(ctx context.Context, id string) error
}

// runREPL reads a line from the scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Every accepted line counts as
// session activity. The loop exits on scanner EOF, context cancellation or
// when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("inv %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		a.Touch()

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, stats, filter, estado <grupo>, buscar <texto>, add, edit <id>, baja <id>, del <id>, hist <id>, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "filter":
			_ = a.Filter(ctx)

		case "estado":
			if len(args) == 0 {
				printlnFn("Usage: estado <Todos|Activos|Disponible|En Uso|En Mantenimiento|De Baja>")
				continue
			}
			_ = a.Estado(ctx, strings.Join(args, " "))

		case "buscar":
			if len(args) == 0 {
				printlnFn("Usage: buscar <texto>")
				continue
			}
			_ = a.Buscar(ctx, strings.Join(args, " "))

		case "add":
			_ = a.Add(ctx)

		case "edit":
			if len(args) == 0 {
				printlnFn("Usage: edit <id>")
				continue
			}
			_ = a.Edit(ctx, args[0])

		case "baja":
			if len(args) == 0 {
				printlnFn("Usage: baja <id>")
				continue
			}
			_ = a.Baja(ctx, args[0])

		case "del":
			if len(args) == 0 {
				printlnFn("Usage: del <id>")
				continue
			}
			_ = a.Del(ctx, args[0])

		case "hist":
			if len(args) == 0 {
				printlnFn("Usage: hist <id>")
				continue
			}
			_ = a.Hist(ctx, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
