// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jcodagnone/contactmap/geocode"
	"github.com/jcodagnone/contactmap/roles"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

// eachLine calls fn for every line of stdin, prompting on terminals.
func eachLine(prompt string, fn func(line string)) {
	input := os.Stdin
	if isatty.IsTerminal(input.Fd()) {
		fmt.Fprintln(os.Stderr, prompt)
	}

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
		os.Exit(1)
	}
}

func printLine(input string, v any) {
	s, err := json.Marshal(v)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s\t\t%s\n", input, s)
}

var debugRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Normalize role annotations, one per line",
	Long: `Reads one role annotation per line and prints it followed by the normalized
roles and their descriptors.

$ echo "Contractor; home owner:Roofer" | contactmap debug roles
Contractor; home owner:Roofer		[{"role":"Contractor",…},{"role":"home owner",…},{"role":"Roofer",…}]
	`,
	Run: func(_ *cobra.Command, _ []string) {
		n := roles.NewNormalizer(roles.NewSeededPicker(viper.GetUint64("seed")))

		eachLine("Enter role annotations, one per line…", func(line string) {
			tags := n.Normalize(line)

			descriptors := make([]roles.Descriptor, len(tags))
			for i, tag := range tags {
				descriptors[i] = roles.Describe(tag)
			}

			printLine(line, descriptors)
		})
	},
}

var debugGeocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve addresses, one per line",
	Long: `Reads one address per line and prints it followed by the resolved point and
where it came from (geocoder, cache or fallback).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		geocoder, err := newGeocoder(cmd.Context())
		if err != nil {
			return err
		}

		cache, closeCache, err := openCache()
		if err != nil {
			return err
		}
		defer func() { _ = closeCache() }()

		resolver := geocode.NewResolver(geocoder, geocode.ResolverOptions{
			Delay:    viper.GetDuration("geocode-delay"),
			Fallback: fallbackEnvelope(),
			Seed:     viper.GetUint64("seed"),
			Cache:    cache,
		})

		eachLine("Enter addresses, one per line…", func(line string) {
			printLine(line, resolver.Resolve(cmd.Context(), line))
		})

		logResolverMetrics(resolver.Metrics())

		return nil
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugRolesCmd)
	debugCmd.AddCommand(debugGeocodeCmd)
}
