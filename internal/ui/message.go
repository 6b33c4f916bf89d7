package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/traxyt/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgEvent MsgKind = iota
	MsgRunDone
	MsgBrowserOpened
)

type runDone struct {
	result *models.ConversionResult
	err    error
}

// eventMsg is the constructor for [MsgEvent]
func eventMsg(event models.Event) Msg {
	return Msg{kind: MsgEvent, data: event}
}

// runDoneMsg is the constructor for [MsgRunDone]
func runDoneMsg(result *models.ConversionResult, err error) Msg {
	return Msg{kind: MsgRunDone, data: runDone{result, err}}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: err}
}
