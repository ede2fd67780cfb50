package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/archdraw/internal/cli"
	"github.com/matzehuels/archdraw/pkg/errors"
)

// Exit statuses. Bad input covers every error the user can fix by editing
// the records, the document, the flags, or the config file.
const (
	exitFailure   = 1
	exitBadInput  = 2
	exitInterrupt = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx, os.Args[1:])
	if err == nil {
		return
	}
	code := exitCode(err)
	if code != exitInterrupt {
		report(os.Stderr, err)
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SilenceErrors = true
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages and timings")

	// The level must be set before the root pre-run loads the config, so that
	// config loading is logged too.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if loadConfig != nil {
			return loadConfig(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

func exitCode(err error) int {
	if stderrors.Is(err, context.Canceled) {
		return exitInterrupt
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeStructural,
		errors.ErrCodeUnsupportedInput,
		errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidRecords,
		errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidID,
		errors.ErrCodeFileNotFound:
		return exitBadInput
	}
	return exitFailure
}

// report prints the message of a coded error without its code. Other
// errors print as they are.
func report(w io.Writer, err error) {
	msg := errors.UserMessage(err)
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	fmt.Fprintf(w, "archdraw: %s\n", msg)
}
