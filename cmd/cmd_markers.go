// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jcodagnone/contactmap/markers"
	"github.com/spf13/cobra"
)

var markersFilter filterFlags

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "Compute map markers, one per contact role",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := runPass(cmd.Context())
		if err != nil {
			return err
		}

		groups := newPlacer().PlaceAll(registry.FilteredContacts(markersFilter.state()))

		if ok, err := printStructured(os.Stdout, groups); ok {
			return err
		}

		rows := make([][]string, 0, markers.Count(groups))

		for _, g := range groups {
			for _, m := range g.Markers {
				popup := ""
				if m.Popup != nil {
					popup = m.Popup.Name
				}

				rows = append(rows, []string{
					m.ContactID,
					m.Role,
					m.Icon.Color,
					m.Icon.Shape,
					strconv.FormatFloat(m.Point.Lat, 'f', 5, 64),
					strconv.FormatFloat(m.Point.Lng, 'f', 5, 64),
					strconv.Itoa(m.ZIndex),
					popup,
				})
			}
		}

		printTable(os.Stdout, []column{
			{"Contact", 12}, {"Role", 18}, {"Color", 7}, {"Shape", 8},
			{"Lat", 10}, {"Lng", 11}, {"Z", 4}, {"Popup", 24},
		}, rows)
		fmt.Printf("%d markers for %d contacts\n", len(rows), len(groups))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(markersCmd)
	markersFilter.register(markersCmd, false)
}
