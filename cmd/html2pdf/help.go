package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf [flags] <input-dir> <output.pdf> [style.css ...]")
	fmt.Fprintln(w, "       html2pdf <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every .html/.xhtml file in input-dir with headless Chrome, oldest")
	fmt.Fprintln(w, "first, and merge the pages into one A4 PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  doctor     Check Chrome, sandbox, work dir and port")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -s, --style <path>        Stylesheet injected after positional ones (repeatable)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Navigation timeout per document (default 30s)")
	fmt.Fprintln(w, "      --workdir <dir>       Directory for per-document PDFs (default temp_pdfs)")
	fmt.Fprintln(w, "      --keep-temp           Keep per-document PDFs after success")
	fmt.Fprintln(w, "      --metrics-file <path> Write Prometheus text metrics")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-document progress")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  HTML2PDF_CONFIG, HTML2PDF_TIMEOUT, HTML2PDF_WORKDIR, HTML2PDF_KEEP_TEMP")
	fmt.Fprintln(w, "  ROD_BROWSER_BIN (Chrome binary), ROD_NO_SANDBOX=1 (containers)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Documents are served from http://127.0.0.1:3000; static/ and")
	fmt.Fprintln(w, "static/reader/ under input-dir are available at /static/ and /static/reader/.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes: 0 ok, 1 general, 2 usage/config, 3 I/O, 4 browser,")
	fmt.Fprintln(w, "            5 port busy, 6 merge")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that a conversion can run: Chrome is found, the sandbox setting")
	fmt.Fprintln(w, "fits the environment, the work dir is writable and port 3000 is free.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable output")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: html2pdf version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: html2pdf help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
