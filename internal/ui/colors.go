package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// ok, err and warn mark found, not found and skipped outcomes
var styles = NewPalette("#FF0033", "#04B575", "#E5484D", "#FFA500", "#626262")

// Palette is a small stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(title, ok, err, warn, help string) *Palette {
	return &Palette{
		title: NewBold(title).MarginBottom(1),
		ok:    NewBold(ok),
		err:   NewBold(err),
		warn:  NewStyle(warn),
		help:  NewEm(help),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
