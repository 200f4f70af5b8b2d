package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tqlx/internal/shared"
)

func main() {
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(nil)})
	app := newApp(runner)

	err := app.Run(context.Background(), os.Args)
	runner.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, runner.palette.Err("Error: "+err.Error()))
		os.Exit(1)
	}
}
