// Package cliutil holds the small pieces of output formatting shared by
// cmd/zkc and cmd/zvm, the way the teacher's tqi/tqserver both format
// tqerrors.GameMessage through the same rosed.Wrap call before printing.
package cliutil

import (
	"fmt"
	"os"

	"github.com/dekarrin/rosed"
	"github.com/dekarrin/zkcircuit/internal/zkerrors"
)

// OutputWidth is the column the CLI wraps diagnostic and report text to.
const OutputWidth = 80

// PrintErr writes err's FullMessage (its source line, a column cursor and
// Error(); plain Error() for anything that isn't a *zkerrors.Error) to
// stderr, word-wrapped the way the teacher wraps GameMessage output.
func PrintErr(prefix string, err error) {
	msg := err.Error()
	if zerr, ok := err.(*zkerrors.Error); ok {
		msg = zerr.FullMessage()
	}
	wrapped := rosed.Edit(fmt.Sprintf("%s: %s", prefix, msg)).Wrap(OutputWidth).String()
	fmt.Fprintln(os.Stderr, wrapped)
}

// PrintErrs reports every error returned by a compile stage and returns
// whether any were printed.
func PrintErrs(prefix string, errs []error) bool {
	for _, err := range errs {
		PrintErr(prefix, err)
	}
	return len(errs) > 0
}

// Report prints an informational line wrapped to OutputWidth, for reports
// too long to trust to an unwrapped terminal line (e.g. published contract
// address listings).
func Report(text string) {
	fmt.Println(rosed.Edit(text).Wrap(OutputWidth).String())
}
