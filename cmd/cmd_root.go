// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jcodagnone/contactmap/contacts"
	"github.com/jcodagnone/contactmap/geocode"
	"github.com/jcodagnone/contactmap/markers"
	"github.com/jcodagnone/contactmap/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "CONTACTMAP"

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

var rootCmd = &cobra.Command{
	Use:   "contactmap",
	Short: "CRM contacts on a map",
	Long: `
contactmap reads contacts from HubSpot (or an export file), normalizes their
project roles, geocodes their addresses and serves filtered views, relevance
suggestions and non overlapping map markers.
`,
	SilenceUsage: true,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	cfgFile := strings.TrimSpace(viper.GetString("config"))
	if cfgFile == "" {
		return
	}

	viper.SetConfigFile(cfgFile)

	if err := viper.ReadInConfig(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
	}
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file path (yaml, toml or json)")

	flags.String("source", "hubspot", "Contact source: hubspot or file")
	flags.String("source-file", "contacts.json", "Contacts export used by --source=file (.json or .json.gz)")
	flags.String("hubspot-token", "", "HubSpot private app access token")
	flags.String("hubspot-url", "https://api.hubapi.com", "HubSpot API base URL")
	flags.Int("hubspot-max-pages", 0, "Stop after that many pages of contacts (0 means all)")

	flags.String("geocoder", "nominatim", "Geocoding provider: nominatim, google or none")
	flags.String("nominatim-url", geocode.DefaultNominatimURL, "Nominatim search endpoint")
	flags.String("google-maps-api-key", "", "Google Maps API key; looked up through ADC when empty")
	flags.String("google-project", "", "Project holding the Google Maps key when ADC carries none")
	flags.String("google-region", "", "Google Maps region bias (ccTLD)")
	flags.String("user-agent", "", "User-Agent of outgoing requests")
	flags.Duration("geocode-delay", geocode.DefaultDelay, "Pause before each geocoding request (0 selects the 1s default, negative disables)")
	flags.String("cache-path", "db/geocodes.duckdb", "Geocode cache database")
	flags.Bool("no-cache", false, "Disable the geocode cache")
	flags.Float64("fallback-lat", geocode.DefaultFallback.Center.Lat, "Latitude of the fallback area center")
	flags.Float64("fallback-lng", geocode.DefaultFallback.Center.Lng, "Longitude of the fallback area center")
	flags.Float64("fallback-span", geocode.DefaultFallback.LatSpan, "Half size in degrees of the fallback area")

	flags.Float64("marker-scale", markers.DefaultScale, "Degrees per role offset unit")
	flags.Uint64("seed", 0, "Seed for fallback roles and points (0 seeds from the clock)")
	flags.Int("snapshot-every", contacts.DefaultSnapshotEvery, "Publish partial results every that many contacts")
	flags.Int("h3-resolution", contacts.DefaultH3Resolution, "H3 resolution of contact cells")

	flags.String("addr", server.DefaultAddr, "Listen address of serve")
	flags.StringP("output", "o", "table", "Output format: table, json or yaml")

	flags.Bool("trace-http", false, "Display HTTP requests-responses")
	flags.Bool("trace-http-body", false, "Display HTTP requests-responses bodies")

	_ = viper.BindPFlags(flags)
}
