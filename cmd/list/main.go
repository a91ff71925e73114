package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chrisant-go/list/internal/content"
	"github.com/chrisant-go/list/internal/observability"
	"github.com/chrisant-go/list/internal/tui"
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() int {
	var (
		emulate       string
		inputFile     string
		lineFlag      int
		offsetFlag    string
		maxLineLength int
		multibyte     bool
		noMultibyte   bool
		wrapping      bool
		noWrapping    bool
		helpFlag      bool
	)

	flag.StringVar(&emulate, "emulate", "", "Emulate a particular terminal's capabilities")
	flag.StringVar(&inputFile, "input-file", "", "Read content from a file instead of a positional argument")
	flag.IntVar(&lineFlag, "line", 0, "Start the viewer scrolled to this 1-based line number")
	flag.StringVar(&offsetFlag, "offset", "", "Start the viewer scrolled to this byte offset (decimal or 0x-hex)")
	flag.IntVar(&maxLineLength, "max-line-length", 0, "Override the maximum indexed line length in bytes")
	flag.BoolVar(&multibyte, "multibyte", false, "Enable multibyte codepage decoding")
	flag.BoolVar(&noMultibyte, "no-multibyte", false, "Disable multibyte codepage decoding")
	flag.BoolVar(&wrapping, "wrapping", false, "Enable line wrapping on startup")
	flag.BoolVar(&noWrapping, "no-wrapping", false, "Disable line wrapping on startup")
	flag.BoolVar(&helpFlag, "help", false, "Show help message")
	flag.BoolVar(&helpFlag, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "list - interactive terminal file browser and viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  list [options] [filespec...]\n")
		fmt.Fprintf(os.Stderr, "  list --help\n\n")
		fmt.Fprintf(os.Stderr, "Arguments:\n")
		fmt.Fprintf(os.Stderr, "  filespec              A directory to browse, or a file to open directly.\n")
		fmt.Fprintf(os.Stderr, "                        If omitted, list browses the current directory,\n")
		fmt.Fprintf(os.Stderr, "                        or the piped input on stdin if any is present.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  NO_COLOR              Disable color output\n")
		fmt.Fprintf(os.Stderr, "  EDITOR                Used when handing off to an external editor\n")
	}

	flag.Parse()

	if helpFlag {
		flag.Usage()
		return 0
	}

	if multibyte && noMultibyte {
		fmt.Fprintf(os.Stderr, "Error: --multibyte and --no-multibyte are mutually exclusive\n")
		return 1
	}
	if wrapping && noWrapping {
		fmt.Fprintf(os.Stderr, "Error: --wrapping and --no-wrapping are mutually exclusive\n")
		return 1
	}
	// --emulate is consumed by the terminal/ANSI plumbing layer (out of
	// this package's scope); parsed here only so it appears in --help and
	// doesn't trip flag.Parse on an unrecognized option.
	_ = emulate

	logger := newLogger()

	params := tui.ModelParams{
		MultibyteEnabled: multibyte,
		Logger:           logger,
	}
	if maxLineLength > 0 {
		params.MaxLineLength = maxLineLength
	}
	if lineFlag > 0 {
		params.StartLine = lineFlag
	} else if offsetFlag != "" {
		off, err := parseOffset(offsetFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --offset %q: %v\n", offsetFlag, err)
			return 1
		}
		params.StartOffset = off
		params.HasStartOffset = true
	}

	target := inputFile
	if target == "" && flag.NArg() > 0 {
		target = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "Error: too many arguments\n\n")
		flag.Usage()
		return 1
	}

	switch {
	case target != "":
		info, err := os.Stat(target)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if info.IsDir() {
			params.StartDir = target
		} else {
			params.StartFile = target
		}
	case !isTerminal(os.Stdin):
		source, err := content.CapturePipe(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading stdin: %v\n", err)
			return 1
		}
		params.StartFile = "<stdin>"
		params.StartSource = source
		params.StartDir = "."
	default:
		params.StartDir = "."
	}

	model, err := tui.NewModel(params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("list: program exited with error", "error", err)
		return 1
	}

	return 0
}

func newLogger() *observability.CoreLogger {
	var writer io.Writer = io.Discard
	debugPath := os.Getenv("LIST_DEBUG_LOG")
	if debugPath == "" {
		if stored, ok := observability.GetDefaultLoggerPath(); ok {
			debugPath = stored
		}
	}
	if debugPath != "" {
		if f, err := os.OpenFile(debugPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644); err == nil {
			writer = f
			observability.SetDefaultLoggerPath(debugPath)
		}
	}
	return observability.NewCoreLogger(slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return true
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// parseOffset parses a byte offset in decimal or 0x-prefixed hex, matching
// JumpPrompt.Resolve's convention.
func parseOffset(s string) (int64, error) {
	if len(s) > 2 && (s[0:2] == "0x" || s[0:2] == "0X") {
		return strconv.ParseInt(s[2:], 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}
