package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"bookfetch/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusError
)

var statusKinds = map[statusKind]struct {
	label  string
	colors text.Colors
}{
	statusInfo:  {"INFO", text.Colors{text.FgBlue}},
	statusOK:    {"OK", text.Colors{text.FgGreen}},
	statusError: {"ERROR", text.Colors{text.FgRed}},
}

// checkLabelWidth fits the longest preflight check name.
const checkLabelWidth = 24

// renderCheck formats one preflight result as "  Name:   [OK] detail".
func renderCheck(r preflight.Result, colorize bool) string {
	kind := statusOK
	if !r.Passed {
		kind = statusError
	}
	return renderStatusLine(r.Name, kind, r.Detail, colorize)
}

func renderStatusLine(label string, kind statusKind, detail string, colorize bool) string {
	info := statusKinds[kind]
	status := "[" + info.label + "]"
	if detail != "" {
		status += " " + detail
	}
	line := fmt.Sprintf("  %-*s %s", checkLabelWidth, label+":", status)
	if colorize {
		return info.colors.Sprint(line)
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
