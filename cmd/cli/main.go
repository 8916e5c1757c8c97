package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/MAKRANE-cpu/monographie/adapters/datareadiness/coercer"
	"github.com/MAKRANE-cpu/monographie/adapters/excel"
	"github.com/MAKRANE-cpu/monographie/adapters/export"
	"github.com/MAKRANE-cpu/monographie/app"
	"github.com/MAKRANE-cpu/monographie/domain/sheet"
	"github.com/MAKRANE-cpu/monographie/internal/config"
	"github.com/MAKRANE-cpu/monographie/internal/container"
	"github.com/MAKRANE-cpu/monographie/internal/errors"
	"github.com/MAKRANE-cpu/monographie/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "monographie-cli",
		Short:         "Load, inspect and export the Chefchaouen agricultural workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newLoadCmd(),
		newShowCmd(),
		newExportCmd(),
		newAskCmd(),
		newMonographCmd(),
	)
	return rootCmd
}

// bootstrap loads the configuration and wires the services
func bootstrap() (*container.Container, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return container.New(cfg)
}

func loadTables(ctx context.Context, c *container.Container) (*sheet.Collection, sheet.LoadReport, error) {
	return c.Loader.Load(ctx, c.SpreadsheetID())
}

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load every worksheet and print the cleaned table shapes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap()
			if err != nil {
				return err
			}
			tables, report, err := loadTables(cmd.Context(), c)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), tables, report)
		},
	}
}

func printReport(out io.Writer, tables *sheet.Collection, report sheet.LoadReport) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FEUILLE\tTYPE\tLIGNES\tCOLONNES")
	for _, t := range tables.Tables() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", t.Name, app.ClassifySheet(t.Name), len(t.Rows), len(t.Columns))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, s := range report.Skipped {
		fmt.Fprintf(out, "ignorée: %s (%s)\n", s.Title, s.Reason)
	}
	return nil
}

func newShowCmd() *cobra.Command {
	var rows int
	var describe bool

	cmd := &cobra.Command{
		Use:   "show <sheet>",
		Short: "Print the first rows of a cleaned sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap()
			if err != nil {
				return err
			}
			t, err := findTable(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}
			if err := printTable(cmd.OutOrStdout(), t.Head(rows)); err != nil {
				return err
			}
			if describe {
				return printSummary(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 10, "Number of rows to print")
	cmd.Flags().BoolVar(&describe, "describe", false, "Print summary statistics per column")
	return cmd
}

func findTable(ctx context.Context, c *container.Container, name string) (*sheet.Table, error) {
	tables, _, err := loadTables(ctx, c)
	if err != nil {
		return nil, err
	}
	t, ok := tables.Get(name)
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("sheet %q (available: %s)", name, strings.Join(tables.Names(), ", ")))
	}
	return t, nil
}

func printTable(out io.Writer, t *sheet.Table) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(t.Header(), "\t")+"\t")
	for _, row := range t.Rows {
		cells := make([]string, 0, len(row.Values)+1)
		cells = append(cells, row.ID)
		for _, v := range row.Values {
			cells = append(cells, coercer.Format(v))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}

func printSummary(out io.Writer, t *sheet.Table) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\ncolonne\tcount\tmean\tstd\tmin\t50%\tmax\t")
	for _, col := range t.Columns {
		s, err := app.Describe(t, col)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t\n", col, s.Count,
			coercer.Format(s.Mean), coercer.Format(s.Std), coercer.Format(s.Min),
			coercer.Format(s.Median), coercer.Format(s.Max))
	}
	return tw.Flush()
}

func newExportCmd() *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "export <sheet>",
		Short: "Export a cleaned sheet as CSV, JSON or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			c, err := bootstrap()
			if err != nil {
				return err
			}
			t, err := findTable(cmd.Context(), c, args[0])
			if err != nil {
				return err
			}

			if out == "" {
				out = export.FileName(t, f, time.Now())
			}
			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer file.Close()

			if err := writeTable(file, t, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s écrit (%d lignes)\n", out, len(t.Rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv, json or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: <sheet>_<date>.<format>)")
	return cmd
}

func writeTable(w io.Writer, t *sheet.Table, f export.Format) error {
	switch f {
	case export.FormatXLSX:
		return excel.WriteTable(w, t)
	case export.FormatJSON:
		return export.WriteJSON(w, t)
	default:
		return export.WriteCSV(w, t)
	}
}

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant a question about the loaded data",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap()
			if err != nil {
				return err
			}
			tables, _, err := loadTables(cmd.Context(), c)
			if err != nil {
				return err
			}

			sess := models.NewSession(uuid.New(), time.Now())
			answer, err := c.Assistant.Ask(cmd.Context(), sess, tables, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
}

func newMonographCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "monograph",
		Short: "Generate the provincial monograph in Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := bootstrap()
			if err != nil {
				return err
			}
			tables, _, err := loadTables(cmd.Context(), c)
			if err != nil {
				return err
			}

			sess := models.NewSession(uuid.New(), time.Now())
			text, err := c.Monograph.Generate(cmd.Context(), sess, tables)
			if err != nil {
				return err
			}

			if out == "-" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			if out == "" {
				out = app.MonographFileName(time.Now())
			}
			if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s écrit\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout (default: Monographie_Chefchaouen_<date>.txt)")
	return cmd
}
