// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// column of a box table.
type column struct {
	title string
	width int
}

// printTable renders rows in a box drawn table. Cells wider than their
// column are cut with an ellipsis.
func printTable(w io.Writer, columns []column, rows [][]string) {
	line := func(left, mid, right string) {
		parts := make([]string, len(columns))
		for i, c := range columns {
			parts[i] = strings.Repeat("─", c.width+2)
		}

		fmt.Fprintf(w, "%s%s%s\n", left, strings.Join(parts, mid), right)
	}

	row := func(cells []string) {
		parts := make([]string, len(columns))
		for i, c := range columns {
			cell := ""
			if i < len(cells) {
				cell = fit(cells[i], c.width)
			}

			parts[i] = " " + cell + strings.Repeat(" ", c.width-utf8.RuneCountInString(cell)) + " "
		}

		fmt.Fprintf(w, "│%s│\n", strings.Join(parts, "│"))
	}

	titles := make([]string, len(columns))
	for i, c := range columns {
		titles[i] = c.title
	}

	line("╭", "┬", "╮")
	row(titles)
	line("├", "┼", "┤")

	for _, r := range rows {
		row(r)
	}

	line("╰", "┴", "╯")
}

func fit(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}

	r := []rune(s)

	return string(r[:width-1]) + "…"
}

// printStructured writes v as json or yaml. It returns false for the table
// format, which every command renders on its own.
func printStructured(w io.Writer, v any) (bool, error) {
	switch format := viper.GetString("output"); format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return true, err
		}

		return true, enc.Close()
	case "table", "":
		return false, nil
	default:
		return true, fmt.Errorf("unknown output format %q", format)
	}
}
