package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/motifkit/motif/internal/config"
	"github.com/motifkit/motif/internal/registry"
	"github.com/motifkit/motif/internal/scanner"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List all discovered pages",
	Long: `List all discovered pages with their titles, module usage, and
geometry.

Examples:
  motif list                      # List pages in table format
  motif list -f json              # Output as JSON
  motif list -f yaml              # Output as YAML`,
	RunE: runList,
}

var (
	listFormat      string
	listFormatCheck func() error
)

func init() {
	rootCmd.AddCommand(listCmd)
	listFormatCheck = addFormatFlag(listCmd.Flags(), &listFormat, "table", "json", "yaml")
}

type pageListing struct {
	Name     string   `json:"name" yaml:"name"`
	Title    string   `json:"title" yaml:"title"`
	Modules  []string `json:"modules" yaml:"modules"`
	Elements int      `json:"elements" yaml:"elements"`
	Height   float64  `json:"height" yaml:"height"`
	Path     string   `json:"path" yaml:"path"`
}

func runList(cmd *cobra.Command, args []string) error {
	if err := listFormatCheck(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := newLogger(cfg.Log.Level, cfg.Log.Format)

	reg := registry.NewPageRegistry()
	sc := scanner.NewPageScanner(reg, cfg.Pages.ScanPaths, cfg.Pages.ExcludePatterns, log)
	if err := sc.ScanAll(cmd.Context()); err != nil {
		return fmt.Errorf("scanning pages: %w", err)
	}

	listings := make([]pageListing, 0, reg.Count())
	for _, info := range reg.All() {
		listings = append(listings, pageListing{
			Name:     info.Name,
			Title:    info.Title,
			Modules:  info.Modules,
			Elements: info.Elements,
			Height:   info.Height,
			Path:     info.Path,
		})
	}

	switch listFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(listings)
	default:
		renderListTable(listings)
		return nil
	}
}

func renderListTable(listings []pageListing) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Page", "Title", "Modules", "Elements", "Height"})
	for _, l := range listings {
		t.AppendRow(table.Row{
			l.Name, l.Title, strings.Join(l.Modules, ", "), l.Elements,
			fmt.Sprintf("%.0fpx", l.Height),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
