package main

import (
	"fmt"
	"os"
	"strings"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI decides whether a run over fileCount files gets the progress
// view. In auto mode a single file never does.
func shouldUseTUI(mode uiMode, fileCount int) bool {
	switch mode {
	case uiModeOn:
		return fileCount > 0
	case uiModeOff:
		return false
	default:
		return fileCount > 1 && isTerminal(os.Stdout)
	}
}
