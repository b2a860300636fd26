package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/fastpy/optimize"
	"golang.org/x/term"
)

var (
	menuTitleStyle  = lipgloss.NewStyle().Bold(true)
	menuNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// styled reports whether menu output should carry ANSI styling. NO_COLOR
// and non-terminal stdout both veto it.
func styled() bool {
	return os.Getenv("NO_COLOR") == "" && term.IsTerminal(int(os.Stdout.Fd()))
}

// renderMenu returns the numbered optimization menu.
func renderMenu() string {
	color := styled()
	var b strings.Builder
	title := "Please select one of the following optimization methods:"
	if color {
		title = menuTitleStyle.Render(title)
	}
	b.WriteString(title)
	b.WriteByte('\n')
	for _, o := range optimize.All() {
		num := fmt.Sprintf("%d", o.ID)
		if color {
			num = menuNumberStyle.Render(num)
		}
		fmt.Fprintf(&b, "%s - %s\n", num, o.Label)
	}
	return b.String()
}

func prompt(in *bufio.Reader, msg string) (string, error) {
	if styled() {
		msg = promptStyle.Render(msg)
	}
	fmt.Print(msg)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading selection: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptFile(in *bufio.Reader) (string, error) {
	return prompt(in, "Enter the Python file name to optimize: ")
}

func promptMode(in *bufio.Reader) (string, error) {
	fmt.Print(renderMenu())
	return prompt(in, fmt.Sprintf("Your choice (1-%d): ", len(optimize.All())))
}
