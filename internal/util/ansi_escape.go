package util

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Ansi colors
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Gray   = "\033[37m"
	White  = "\033[97m"
)

// Ansi styles
const (
	Bold      = "\033[1m"
	Underline = "\033[4m"
	Inverse   = "\033[7m"
)

// Ansi 256 light colors
const (
	LightRed    = "\033[91m"
	LightGreen  = "\033[92m"
	LightYellow = "\033[93m"
	LightBlue   = "\033[94m"
	LightPurple = "\033[95m"
	LightCyan   = "\033[96m"
)

// Background colors
const (
	BgRed   = "\033[41m"
	BgGreen = "\033[42m"
	BgGray  = "\033[47m"
)

// Level orders console output. Messages below the current level are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelSilent
)

var (
	mu     sync.Mutex
	level  = LevelInfo
	output io.Writer = os.Stdout
	colors = true
)

// SetLevel sets the minimum level printed by the Print* helpers.
func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// ParseLevel maps "debug", "info", "warning", "error" and "silent" to a Level.
// Anything else is treated as info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarning
	case "error":
		return LevelError
	case "silent", "quiet":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// SetOutput redirects console output. Colors are disabled for anything that
// is not stdout or stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	output = w
	colors = w == os.Stdout || w == os.Stderr
	mu.Unlock()
}

func emit(l Level, color, tag, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if l < level {
		return
	}
	if colors {
		fmt.Fprintf(output, "%s%s%s %s\n", color, tag, Reset, msg)
		return
	}
	fmt.Fprintf(output, "%s %s\n", tag, msg)
}

// PrintSuccess prints a success message to the console
func PrintSuccess(msg string) {
	emit(LevelInfo, Green, "[+]", msg)
}

// PrintError prints an error message to the console
func PrintError(msg string) {
	emit(LevelError, Red, "[!]", msg)
}

// PrintErrorf prints a formatted error message to the console
func PrintErrorf(format string, a ...interface{}) {
	PrintError(fmt.Sprintf(format, a...))
}

func ColorF(color, format string, a ...interface{}) string {
	return fmt.Sprintf("%s%s%s", color, fmt.Sprintf(format, a...), Reset)
}

// PrintInfo prints an info message to the console
func PrintInfo(msg string) {
	emit(LevelInfo, Cyan, "[i]", msg)
}

func PrintInfof(format string, a ...interface{}) {
	PrintInfo(fmt.Sprintf(format, a...))
}

// PrintWarning prints a warning message to the console
func PrintWarning(msg string) {
	emit(LevelWarning, Yellow, "[-]", msg)
}

func PrintWarningf(format string, a ...interface{}) {
	PrintWarning(fmt.Sprintf(format, a...))
}

// PrintDebug prints a debug message to the console
func PrintDebug(msg string) {
	emit(LevelDebug, Gray, "[DEBUG]", msg)
}

func PrintDebugf(format string, a ...interface{}) {
	PrintDebug(fmt.Sprintf(format, a...))
}

// PrintColorBold prints a bold colored line regardless of level. Used for banners.
func PrintColorBold(color, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if level == LevelSilent {
		return
	}
	if colors {
		fmt.Fprintf(output, "%s%s%s\n", color+Bold, msg, Reset)
		return
	}
	fmt.Fprintln(output, msg)
}
