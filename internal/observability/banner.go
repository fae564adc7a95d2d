package observability

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorBold  = "\033[1m"
)

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// PrintBanner writes the startup banner. Skipped when stdout is not a
// terminal (e.g. running under systemd or in a container).
func PrintBanner(appName string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}

	width := termWidth()
	if width > 60 {
		width = 60
	}
	line := make([]byte, width)
	for i := range line {
		line[i] = '='
	}

	fmt.Printf("%s%s%s%s\n", colorBold, colorCyan, string(line), colorReset)
	fmt.Printf("%s  %s :: plan-driven book recommender%s\n", colorCyan, appName, colorReset)
	fmt.Printf("%s%s%s%s\n", colorBold, colorCyan, string(line), colorReset)
}
