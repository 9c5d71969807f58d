package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"     _    _                          ", "#34d399"},
	{"    / \\  | |__   __ _  ___ _   _ ___ ", "#2dd4bf"},
	{"   / _ \\ | '_ \\ / _` |/ __| | | / __|", "#22d3ee"},
	{"  / ___ \\| |_) | (_| | (__| |_| \\__ \\", "#38bdf8"},
	{" /_/   \\_\\_.__/ \\__,_|\\___|\\__,_|___/", "#60a5fa"},
}

// PrintBanner writes the Abacus banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	fmt.Fprintln(w, out.String(fmt.Sprintf("  integer calculator %s", version)).Faint())
	fmt.Fprintln(w)
}
