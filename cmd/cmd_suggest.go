// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jcodagnone/contactmap/contacts"
	"github.com/spf13/cobra"
)

var suggestFilter filterFlags

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Rank contacts by relevance to the filters",
	Long: `Scores every contact against the filters: +5 for a matching role, +3 for a
matching location, +1 for each inactive filter and +1 each for email and phone.
Contacts scoring above 1 are listed, best first.

$ contactmap suggest -r "Geo Tech" -n 0
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := runPass(cmd.Context())
		if err != nil {
			return err
		}

		f := suggestFilter.state()
		all := registry.Suggestions(f, 0)
		suggestions := contacts.Limit(all, suggestFilter.limit)

		if ok, err := printStructured(os.Stdout, suggestions); ok {
			return err
		}

		rows := make([][]string, 0, len(suggestions))
		for _, s := range suggestions {
			rows = append(rows, []string{
				strconv.Itoa(s.Score),
				s.Name,
				strings.Join(s.Roles, ", "),
				s.City,
				s.Email,
				s.Phone,
			})
		}

		printTable(os.Stdout, []column{
			{"Score", 5}, {"Name", 24}, {"Roles", 34}, {"City", 16}, {"Email", 28}, {"Phone", 16},
		}, rows)
		fmt.Printf("%d of %d suggestions\n", len(suggestions), len(all))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestFilter.register(suggestCmd, true)
}
