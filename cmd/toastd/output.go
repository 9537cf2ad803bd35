package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/vango-dev/toastkit/pkg/server"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)

	typeStyles = map[string]lipgloss.Style{
		"success": lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		"error":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		"warning": lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		"info":    lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
	}
)

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// printToasts writes the toasts as an aligned table.
func printToasts(w io.Writer, toasts []server.ToastResponse) {
	if len(toasts) == 0 {
		info(w, dimStyle.Render("no active toasts"))
		return
	}

	rows := [][]string{{"ID", "TYPE", "STATE", "MESSAGE"}}
	for _, t := range toasts {
		rows = append(rows, []string{t.ID, t.Type, state(t), message(t)})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := lipgloss.NewStyle().Width(widths[i])
			switch {
			case r == 0:
				style = style.Inherit(headerStyle)
			case i == 1:
				style = style.Inherit(typeStyles[cell])
			case i == 2:
				style = style.Inherit(dimStyle)
			}
			if i == len(row)-1 {
				style = style.UnsetWidth()
			}
			cells[i] = style.Render(cell)
		}
		fmt.Fprintln(w, strings.Join(cells, "  "))
	}
}

func state(t server.ToastResponse) string {
	switch {
	case t.Loading:
		return "loading"
	case t.Paused:
		return "paused " + t.Remaining
	case t.Remaining != "":
		return t.Remaining + " left"
	case t.Progress != nil:
		return fmt.Sprintf("%.0f/%.0f", t.Progress.Current, t.Progress.Total)
	default:
		return "persistent"
	}
}

func message(t server.ToastResponse) string {
	if t.Title != "" {
		return t.Title + ": " + t.Message
	}
	return t.Message
}
