// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jcodagnone/contactmap/contacts"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type filterFlags struct {
	roles    []string
	location string
	limit    int
}

func (f *filterFlags) state() contacts.FilterState {
	return contacts.NewFilterState(f.roles, f.location)
}

func (f *filterFlags) register(cmd *cobra.Command, withLimit bool) {
	cmd.Flags().StringArrayVarP(&f.roles, "role", "r", nil, "Keep contacts holding this role (repeatable)")
	cmd.Flags().StringVarP(&f.location, "location", "l", "", "Keep contacts whose address contains this text")

	if withLimit {
		cmd.Flags().IntVarP(&f.limit, "limit", "n", contacts.DefaultSuggestionLimit, "Maximum number of suggestions (0 means all)")
	}
}

// progressReporter shows a progress bar on terminals. Elsewhere it returns
// a nil callback, so the pipeline logs one line per contact.
func progressReporter() (func(done, total int, c *contacts.Contact), func()) {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil, func() {}
	}

	var bar *progressbar.ProgressBar

	report := func(_, total int, _ *contacts.Contact) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Geocoding contacts"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		if err := bar.Add(1); err != nil {
			log.Printf("Updating progress bar: %s", err)
		}
	}

	finish := func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}

	return report, finish
}

// runPass ingests every contact of the configured source and returns the
// resulting registry.
func runPass(ctx context.Context) (*contacts.Registry, error) {
	report, finish := progressReporter()

	svc, closeCache, err := newService(ctx, report)
	if err != nil {
		return nil, err
	}

	_, err = svc.Run(ctx)

	finish()
	logResolverMetrics(svc.Pipeline().Resolver().Metrics())

	if cerr := closeCache(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("closing cache: %w", cerr))
	}

	if err != nil {
		return nil, err
	}

	return svc.Registry(), nil
}

var ingestFilter filterFlags

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch, normalize and geocode every contact",
	Long: `Fetches every contact of the configured source, normalizes its roles and
geocodes its address (one request at a time, cached), then prints the contacts
matching the optional filters.

$ contactmap ingest --source file --source-file contacts.json -r Contractor -l Springfield
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		registry, err := runPass(cmd.Context())
		if err != nil {
			return err
		}

		views := registry.Views(ingestFilter.state(), 0)

		if ok, err := printStructured(os.Stdout, views.Filtered); ok {
			return err
		}

		rows := make([][]string, 0, len(views.Filtered))
		for _, c := range views.Filtered {
			rows = append(rows, []string{
				c.ID,
				c.Name,
				strings.Join(c.Roles, ", "),
				contacts.City(c.Address),
				strconv.FormatFloat(c.Point.Lat, 'f', 5, 64),
				strconv.FormatFloat(c.Point.Lng, 'f', 5, 64),
				strconv.FormatBool(c.Geocoded),
			})
		}

		printTable(os.Stdout, []column{
			{"Id", 12}, {"Name", 24}, {"Roles", 34}, {"City", 16},
			{"Lat", 10}, {"Lng", 11}, {"Geocoded", 8},
		}, rows)
		fmt.Println(views.Summary())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestFilter.register(ingestCmd, false)
}
