// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/jcodagnone/contactmap/roles"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the known roles with their map legend",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		legend := roles.Legend()

		if ok, err := printStructured(os.Stdout, legend); ok {
			return err
		}

		rows := make([][]string, 0, len(legend)+1)
		for _, d := range append(legend, roles.Unknown) {
			name := d.Role
			if !d.Known {
				name = "(other)"
			}

			rows = append(rows, []string{
				name, d.Color, d.Shape, fmt.Sprintf("%+.0f, %+.0f", d.Offset.X, d.Offset.Y),
			})
		}

		printTable(os.Stdout, []column{{"Role", 18}, {"Color", 7}, {"Shape", 8}, {"Offset", 8}}, rows)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}
