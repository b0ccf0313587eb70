// Package cliout renders CLI output in either human-readable text or JSON.
//
// The format is process-wide and set once from the --output flag with
// SetFormat. Human output uses ANSI colors and Unicode symbols when stdout is
// a terminal and NO_COLOR is unset; otherwise plain ASCII markers are used so
// logs and pipes stay readable.
//
//	if err := cliout.SetFormat(outputFlag); err != nil {
//	    return err
//	}
//	return cliout.Print(state, func() {
//	    cliout.Success("Logged in to %s", host)
//	})
//
// Output goes to os.Stdout unless redirected with SetWriter, which tests use
// to capture it.
package cliout
