// Package diagnostics implements the fatal-invariant path described in
// spec.md §7: a corrupted internal structure or an allocation failure is
// never recoverable, so callers log a hex dump of the offending value and
// abort the process rather than return a user-visible error.
package diagnostics

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Fatal logs a structural dump of culprit alongside msg and aborts the
// process. It is called for contract violations that a caller cannot
// recover from: unknown encoding tags, a corrupted PackedList buffer, an
// unsafe-iterator fingerprint mismatch, an allocation failure.
func Fatal(log *zap.Logger, msg string, culprit any) {
	dump := dumper.Sdump(culprit)
	if log != nil {
		log.Error(msg, zap.String("dump", dump))
		_ = log.Sync()
	} else {
		fmt.Fprintln(os.Stderr, msg)
		fmt.Fprintln(os.Stderr, dump)
	}
	os.Exit(2)
}
