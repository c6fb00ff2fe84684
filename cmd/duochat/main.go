package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/duochat/internal/console"
)

func main() {
	os.Exit(execute(context.Background(), os.Args[1:]))
}

// execute runs the CLI and maps the result onto the process exit code:
// 0 after a graceful session end, 1 for anything else.
func execute(ctx context.Context, args []string) int {
	return executeApp(ctx, newApp(), args)
}

func executeApp(ctx context.Context, a *app, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		errOut := a.errOut()
		console.New(os.Stdin, io.Discard, errOut, a.colorEnabled() && a.stderr == nil).Error(err)
		fmt.Fprintln(errOut, "Run 'duochat --help' for usage.")
		return 1
	}
	return 0
}
