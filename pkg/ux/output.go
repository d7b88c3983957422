// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides styled terminal output for the strataview CLI.
//
// Output degrades to plain text when stdout is not a terminal or when
// STRATAVIEW_PLAIN is set, so seed runs in CI logs stay grep-able.
package ux

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// StrataView color palette - slate blues and signal amber
var (
	ColorSkyBright   = lipgloss.Color("#6EC6FF") // highlights, success
	ColorSkyPrimary  = lipgloss.Color("#3E92CC") // main brand color
	ColorSteel       = lipgloss.Color("#2A628F") // borders, accents
	ColorSlate       = lipgloss.Color("#5C6B73") // muted text
	ColorAmber       = lipgloss.Color("#F4A259") // warnings
	ColorSignalRed   = lipgloss.Color("#E5383B") // errors
	ColorSignalGreen = lipgloss.Color("#7AE582") // success counts
)

// Styles provides the pre-configured lipgloss styles.
var Styles = struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorSkyBright),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorSlate),
	Success: lipgloss.NewStyle().Foreground(ColorSignalGreen),
	Warning: lipgloss.NewStyle().Foreground(ColorAmber),
	Error:   lipgloss.NewStyle().Foreground(ColorSignalRed),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSteel).
		Padding(0, 1),
}

var (
	plainOnce sync.Once
	plainMode bool
)

// Plain reports whether styled output is suppressed. True when
// STRATAVIEW_PLAIN is set or stdout is not a terminal.
func Plain() bool {
	plainOnce.Do(func() {
		if os.Getenv("STRATAVIEW_PLAIN") != "" {
			plainMode = true
			return
		}
		fd := os.Stdout.Fd()
		plainMode = !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
	})
	return plainMode
}

// SetPlain overrides the detection. Used by tests and by --plain.
func SetPlain(v bool) {
	plainOnce.Do(func() {})
	plainMode = v
}

// Title prints a styled section title.
func Title(text string) {
	if Plain() {
		fmt.Printf("== %s ==\n", text)
		return
	}
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success line.
func Success(text string) {
	if Plain() {
		fmt.Printf("OK: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Success.Render("✓"), text)
}

// Warning prints a warning line.
func Warning(text string) {
	if Plain() {
		fmt.Fprintf(os.Stderr, "WARN: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Warning.Render("⚠"), text)
}

// Error prints an error line.
func Error(text string) {
	if Plain() {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Error.Render("✗"), text)
}

// Info prints a secondary line.
func Info(text string) {
	if Plain() {
		fmt.Println(text)
		return
	}
	fmt.Printf("%s %s\n", Styles.Muted.Render("│"), text)
}

// Box prints titled content in a rounded box.
func Box(title, content string) {
	if Plain() {
		fmt.Printf("%s: %s\n", title, content)
		return
	}
	boxStyle := Styles.Box.Width(60)
	fmt.Println(boxStyle.Render(Styles.Title.Render(title) + "\n" + content))
}

// CountTable renders a name/count table sorted by name. The seed
// commands use it for the run summary.
func CountTable(counts map[string]int64) string {
	names := make([]string, 0, len(counts))
	width := 0
	for name := range counts {
		names = append(names, name)
		if len(name) > width {
			width = len(name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	var total int64
	for _, name := range names {
		line := fmt.Sprintf("%-*s %8d", width, name, counts[name])
		if Plain() {
			b.WriteString(line)
		} else {
			b.WriteString(fmt.Sprintf("%-*s %s", width, name,
				Styles.Success.Render(fmt.Sprintf("%8d", counts[name]))))
		}
		b.WriteString("\n")
		total += counts[name]
	}
	totalLine := fmt.Sprintf("%-*s %8d", width, "total", total)
	if Plain() {
		b.WriteString(totalLine)
	} else {
		b.WriteString(Styles.Bold.Render(totalLine))
	}
	return b.String()
}
