package cliout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Format represents the output format.
type Format string

const (
	// FormatDefault is the default human-readable format.
	FormatDefault Format = "default"
	// FormatJSON is JSON format.
	FormatJSON Format = "json"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightBlue   = "\033[94m"
)

// Unicode symbols and their ASCII fallbacks.
const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"

	ASCIICheck   = "[+]"
	ASCIICross   = "[-]"
	ASCIIWarning = "[!]"
	ASCIIInfo    = "[i]"
)

// mu protects the output settings below.
var mu sync.RWMutex

var currentFormat = FormatDefault

// out is nil for the current os.Stdout.
var out io.Writer

var styled = detectStyle(os.Stdout)

// detectStyle enables colors and symbols only for an interactive terminal
// without NO_COLOR set.
func detectStyle(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// SetFormat sets the global output format.
func SetFormat(value string) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(strings.TrimSpace(value)) {
	case "default", "text", "":
		currentFormat = FormatDefault
	case "json":
		currentFormat = FormatJSON
	default:
		return fmt.Errorf("invalid output format: %s (valid options: default, json)", value)
	}
	return nil
}

// GetFormat returns the current output format.
func GetFormat() Format {
	mu.RLock()
	defer mu.RUnlock()
	return currentFormat
}

// IsJSON returns true if the output format is JSON.
func IsJSON() bool {
	return GetFormat() == FormatJSON
}

// SetWriter redirects all output and returns the previous writer. A nil w
// restores os.Stdout. Styling is turned off unless w is a terminal.
func SetWriter(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()

	prev := out
	out = w
	if w == nil {
		styled = detectStyle(os.Stdout)
	} else if f, ok := w.(*os.File); ok {
		styled = detectStyle(f)
	} else {
		styled = false
	}
	return prev
}

// NoColor disables colors and Unicode symbols.
func NoColor() {
	mu.Lock()
	styled = false
	mu.Unlock()
}

func writer() (io.Writer, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if out == nil {
		return os.Stdout, styled
	}
	return out, styled
}

// PrintJSON writes data as indented JSON.
func PrintJSON(data any) error {
	w, _ := writer()
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Print outputs data in the configured format: JSON marshals data, default
// runs formatter.
func Print(data any, formatter func()) error {
	if IsJSON() {
		return PrintJSON(data)
	}
	formatter()
	return nil
}

func line(color, symbol, ascii, msg string) {
	w, style := writer()
	if style {
		_, _ = fmt.Fprintf(w, "%s%s%s %s\n", color, symbol, Reset, msg)
		return
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", ascii, msg)
}

// Header prints a bold header with a divider.
func Header(text string) {
	w, style := writer()
	if style {
		_, _ = fmt.Fprintf(w, "\n%s%s%s\n", Bold, text, Reset)
	} else {
		_, _ = fmt.Fprintf(w, "\n%s\n", text)
	}
	_, _ = fmt.Fprintln(w, strings.Repeat("=", len(text)))
}

// Success prints a success message with a green checkmark.
func Success(format string, args ...any) {
	line(BrightGreen, SymbolCheck, ASCIICheck, fmt.Sprintf(format, args...))
}

// Error prints an error message with a red cross.
func Error(format string, args ...any) {
	line(BrightRed, SymbolCross, ASCIICross, fmt.Sprintf(format, args...))
}

// Warning prints a warning message with a yellow triangle.
func Warning(format string, args ...any) {
	line(BrightYellow, SymbolWarning, ASCIIWarning, fmt.Sprintf(format, args...))
}

// Info prints an informational message.
func Info(format string, args ...any) {
	line(BrightBlue, SymbolInfo, ASCIIInfo, fmt.Sprintf(format, args...))
}

// Label prints an indented label and value pair.
func Label(label, value string) {
	w, style := writer()
	if style {
		_, _ = fmt.Fprintf(w, "   %s%-12s%s %s\n", Dim, label+":", Reset, value)
		return
	}
	_, _ = fmt.Fprintf(w, "   %-12s %s\n", label+":", value)
}

// Plain prints text without formatting.
func Plain(format string, args ...any) {
	w, _ := writer()
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
