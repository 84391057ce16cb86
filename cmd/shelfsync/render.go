package main

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"shelfsync/internal/syncstatus"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func paint(text, color string, colorize bool) string {
	if !colorize || color == "" || text == "" {
		return text
	}
	return color + text + ansiReset
}

// formatSize renders a size reported in KiB.
func formatSize(kb uint64) string {
	if kb == 0 {
		return "-"
	}
	return humanize.IBytes(kb * 1024)
}

func redundancyLabel(insufficient bool, colorize bool) string {
	if insufficient {
		return paint("under-replicated", ansiRed, colorize)
	}
	return paint("ok", ansiGreen, colorize)
}

func syncLabel(status syncstatus.Status, colorize bool) string {
	switch status {
	case syncstatus.InSync:
		return paint(string(status), ansiGreen, colorize)
	case syncstatus.Partial, syncstatus.Empty:
		return paint(string(status), ansiYellow, colorize)
	case syncstatus.Missing, syncstatus.Unreachable:
		return paint(string(status), ansiRed, colorize)
	default:
		return string(status)
	}
}

func kindLabel(leaf bool) string {
	if leaf {
		return "file"
	}
	return "folder"
}
