// Smartlists - Rule-Based Smart Playlist Engine for Media Servers
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/smartlists

// Command smartlists evaluates smart-playlist rule sets against a JSON
// catalog export from the command line. It exists for rule debugging and
// integration testing; production hosts embed the engine package directly.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/smartlists/internal/config"
	"github.com/tomtom215/smartlists/internal/engine"
	"github.com/tomtom215/smartlists/internal/logging"
	"github.com/tomtom215/smartlists/internal/ordering"
	"github.com/tomtom215/smartlists/internal/providers"
	"github.com/tomtom215/smartlists/internal/rules"
)

var version = "dev"

var (
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "smartlists",
	Short:   "Rule-based smart playlist evaluation",
	Long:    "Smartlists compiles declarative rule sets and evaluates them against a media catalog export, printing the ordered matching item IDs.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logging.Init(logging.Config{
			Level:     cfg.Log.Level,
			Format:    cfg.Log.Format,
			Caller:    cfg.Log.Caller,
			Timestamp: true,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(fieldsCmd)
}

var (
	catalogPath string
	rulesPath   string
	userRef     string
	extraUsers  []string
	sortSpecs   []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate a rules file against a catalog export",
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, userdata, err := loadCatalog(catalogPath)
		if err != nil {
			return err
		}
		sets, err := loadRules(rulesPath)
		if err != nil {
			return err
		}
		sorts, err := parseSorts(sortSpecs)
		if err != nil {
			return err
		}

		eng := engine.New(
			catalog,
			userdata,
			providers.NewMemoryIdentity(),
			engine.WithWorkers(cfg.EffectiveWorkers()),
			engine.WithIncludeFullyUnwatched(cfg.Engine.IncludeFullyUnwatched),
			engine.WithCompiler(rules.NewCompilerSize(cfg.Engine.PredicateCacheSize)),
		)

		crs, err := eng.CompileRuleSet(sets)
		if err != nil {
			return err
		}
		ids, err := eng.FilterAndOrder(cmd.Context(), catalog.Items(), crs, userRef, extraUsers, sorts)
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Print the rule field catalog",
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range rules.Fields() {
			info, _ := rules.Lookup(name)
			ops := rules.OperatorsFor(name)
			names := make([]string, len(ops))
			for i, op := range ops {
				names[i] = string(op)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-10s %s\n", name, info.Class, strings.Join(names, ", "))
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to JSON catalog export (required)")
	runCmd.Flags().StringVar(&rulesPath, "rules", "", "Path to JSON rules file (required)")
	runCmd.Flags().StringVar(&userRef, "user", "", "Primary user for per-user rules (required)")
	runCmd.Flags().StringSliceVar(&extraUsers, "also-user", nil, "Additional users for per-user rules")
	runCmd.Flags().StringSliceVar(&sortSpecs, "sort", nil, "Sort specs, e.g. ProductionYear:desc")
	_ = runCmd.MarkFlagRequired("catalog")
	_ = runCmd.MarkFlagRequired("rules")
	_ = runCmd.MarkFlagRequired("user")
}

// catalogExport is the CLI's input document: items plus optional collection
// membership, people credits, and per-user play states.
type catalogExport struct {
	Items       []providers.Item                   `json:"items"`
	Collections map[string][]string                `json:"collections,omitempty"`
	People      map[string][]providers.PersonInfo  `json:"people,omitempty"`
	PlayStates  map[string]map[string]playStateDoc `json:"play_states,omitempty"` // itemID -> userID -> state
}

type playStateDoc struct {
	Played     bool   `json:"played"`
	PlayCount  int    `json:"play_count"`
	Favorite   bool   `json:"favorite"`
	LastPlayed string `json:"last_played,omitempty"` // RFC3339
}

func loadCatalog(path string) (*providers.MemoryCatalog, *providers.MemoryUserData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading catalog: %w", err)
	}
	var export catalogExport
	if err := json.Unmarshal(raw, &export); err != nil {
		return nil, nil, fmt.Errorf("parsing catalog: %w", err)
	}

	catalog := providers.NewMemoryCatalog(export.Items)
	for itemID, names := range export.Collections {
		catalog.SetCollections(itemID, names)
	}
	for itemID, people := range export.People {
		catalog.SetPeople(itemID, people)
	}

	userdata := providers.NewMemoryUserData()
	for itemID, byUser := range export.PlayStates {
		for userID, doc := range byUser {
			st := providers.PlayState{
				Played:    doc.Played,
				PlayCount: doc.PlayCount,
				Favorite:  doc.Favorite,
			}
			if doc.LastPlayed != "" {
				if t, err := time.Parse(time.RFC3339, doc.LastPlayed); err == nil {
					st.LastPlayed = t
				}
			}
			userdata.SetPlayState(itemID, userID, st)
		}
	}
	return catalog, userdata, nil
}

func loadRules(path string) ([]rules.ExpressionSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var sets []rules.ExpressionSet
	if err := json.Unmarshal(raw, &sets); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	return sets, nil
}

// parseSorts parses "Field[:direction]" specs.
func parseSorts(specs []string) ([]ordering.SortSpec, error) {
	out := make([]ordering.SortSpec, 0, len(specs))
	for _, s := range specs {
		field, dirName, _ := strings.Cut(s, ":")
		dir, err := ordering.ParseDirection(dirName)
		if err != nil {
			return nil, err
		}
		out = append(out, ordering.SortSpec{Field: strings.TrimSpace(field), Direction: dir})
	}
	return out, nil
}
