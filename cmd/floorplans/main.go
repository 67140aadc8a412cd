// Package main provides the command line front end for the floor plan data.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"floorplans/pkg/config"
	"floorplans/pkg/floorplan"
	"floorplans/pkg/sheets"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string
	projects   []string
	floors     []string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "floorplans",
		Short: "Compare floor plans across projects",
		Long: `floorplans filters a floor plan table by project and floor and
exports the result, prints area totals or checks which plan images exist.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", config.DefaultFilename, "Path to the TOML config file")
	flags.StringSliceVar(&projects, "project", nil, "Projects to include (default: all)")
	flags.StringSliceVar(&floors, "floor", nil, "Floors to include (default: all)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	rootCmd.AddCommand(newExportCmd(), newTotalsCmd(), newImagesCmd(), newConfigCmd())
	return rootCmd
}

func newExportCmd() *cobra.Command {
	var (
		outputPath string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered table as CSV or Excel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := load(cmd)
			if err != nil {
				return err
			}
			filtered := floorplan.Filter(table, selection(cmd, table))

			var body []byte
			switch format {
			case "csv":
				body, err = floorplan.SerializeCSV(filtered)
				if outputPath == "" {
					outputPath = floorplan.ExportFilename
				}
			case "xlsx":
				body, err = floorplan.SerializeXLSX(filtered)
				if outputPath == "" {
					outputPath = floorplan.WorkbookFilename
				}
			default:
				return fmt.Errorf("invalid format: %s (must be csv or xlsx)", format)
			}
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			if outputPath == "-" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(outputPath, body, 0644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			log.WithFields(log.Fields{"path": outputPath, "rows": filtered.Len()}).Info("Exported floor plans")
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path, - for stdout (default: filtered_floor_plans.csv or .xlsx)")
	cmd.Flags().StringVar(&format, "format", "csv", "Export format: csv or xlsx")
	return cmd
}

func newTotalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Print total area per project, largest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, table, err := load(cmd)
			if err != nil {
				return err
			}
			filtered := floorplan.Filter(table, selection(cmd, table))
			totals, err := floorplan.SumAreaByProject(filtered)
			if err != nil {
				return err
			}
			return printTotals(cmd.OutOrStdout(), totals)
		},
	}
}

func printTotals(w io.Writer, totals []floorplan.ProjectArea) error {
	for _, pa := range totals {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", pa.Project, formatTotal(pa.Total)); err != nil {
			return err
		}
	}
	return nil
}

func formatTotal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func newImagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "Report which floor plan images exist for the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, table, err := load(cmd)
			if err != nil {
				return err
			}
			resolver := floorplan.NewDirResolver(cfg.Data.ImageDir)
			return printImages(cmd.OutOrStdout(), resolver, selection(cmd, table))
		},
	}
}

func printImages(w io.Writer, resolver *floorplan.Resolver, sel floorplan.Selection) error {
	for res := range resolver.Resolve(sel) {
		line := fmt.Sprintf("%s\t%s\t%s\t%s", res.Floor, res.Project, res.Key, res.Status)
		if res.Err != nil {
			line += "\t" + res.Err.Error()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configFile); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configFile)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.Default().Save(configFile); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configFile)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.AddCommand(initCmd)
	return cmd
}

// selection builds the selection from --project and --floor. A flag that
// was not given selects every value; one given empty selects none.
func selection(cmd *cobra.Command, table floorplan.Table) floorplan.Selection {
	opts := floorplan.Distinct(table)
	p, f := opts.Projects, opts.Floors
	if cmd.Flags().Changed("project") {
		p = projects
	}
	if cmd.Flags().Changed("floor") {
		f = floors
	}
	return floorplan.NewSelection(p, f)
}

func load(cmd *cobra.Command) (config.Config, floorplan.Table, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, floorplan.Table{}, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.UsesSheet() {
		table, err := floorplan.LoadCSV(cfg.Data.CSVPath)
		return cfg, table, err
	}
	client, err := sheets.NewSheetClient(cmd.Context(), cfg.Data.Sheet.CredentialsFile, cfg.Data.Sheet.SpreadsheetID, cfg.Data.Sheet.Range)
	if err != nil {
		return cfg, floorplan.Table{}, err
	}
	table, err := sheets.LoadTable(cmd.Context(), client)
	return cfg, table, err
}
