package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/procdash/internal/dashboard"
	"github.com/askiada/procdash/pkg/bagel"
	"github.com/askiada/procdash/pkg/chart"
)

const (
	formatTable = "table"
	formatCSV   = "csv"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

type datasetFlags struct {
	schema string
	name   string
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.schema, "schema", bagel.SchemaImaging, "Schema of the bagel (imaging or phenotypic)")
	cmd.Flags().StringVar(&f.name, "name", "", "Name of the dataset")
}

func (a *app) load(ctx context.Context, path string, flags datasetFlags) (*dashboard.Service, *dashboard.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to open bagel")
	}
	defer file.Close()

	svc := a.newService()

	ds, err := svc.Upload(ctx, dashboard.UploadRequest{
		Filename: filepath.Base(path),
		Schema:   flags.schema,
		Name:     flags.name,
		Body:     file,
	})
	var vErr *bagel.ValidationError
	if errors.As(err, &vErr) {
		return nil, nil, errors.New(bagel.UserMessage(err))
	}
	if err != nil {
		return nil, nil, err
	}

	return svc, ds, nil
}

func newSummaryCmd(a *app) *cobra.Command {
	var flags datasetFlags

	cmd := &cobra.Command{
		Use:   "summary FILE",
		Short: "Print the summary and status legend of a bagel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, ds, err := a.load(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}

			return writeSummary(cmd.OutOrStdout(), ds)
		},
	}

	flags.register(cmd)

	return cmd
}

func writeSummary(w io.Writer, ds *dashboard.Dataset) error {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(ds.Name))
	sb.WriteString("\n")
	sb.WriteString(ds.Summary())
	sb.WriteString("\n")

	if ds.HasCharts() {
		sb.WriteString("\n")
		sb.WriteString(titleStyle.Render("Legend"))
		sb.WriteString("\n")

		for _, desc := range bagel.StatusDescriptions {
			sb.WriteString(statusStyle(desc.Status).Render(desc.Status))
			sb.WriteString(": ")
			sb.WriteString(desc.Description)
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())

	return errors.Wrap(err, "unable to write summary")
}

func statusStyle(status string) lipgloss.Style {
	hex, err := chart.StatusColor(status)
	if err != nil {
		return lipgloss.NewStyle()
	}

	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

func newFilterCmd(a *app) *cobra.Command {
	var (
		flags    datasetFlags
		sessions []string
		operator string
		statuses map[string]string
		sortBy   string
		format   string
	)

	cmd := &cobra.Command{
		Use:   "filter FILE",
		Short: "Print the participants of a bagel matching a filter",
		Long: `Prints the overview of a bagel, one row per participant and session,
restricted to the rows matching the filter.

Example:
  procdash filter bagel.csv --session ses-01 --session ses-02 --operator AND \
    --status fmriprep-20.2.7=SUCCESS --sort=-participant_id`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := bagel.ParseOperator(operator)
			if err != nil {
				return err
			}

			if format != formatTable && format != formatCSV {
				return errors.Errorf("unknown format %q, expected %s or %s", format, formatTable, formatCSV)
			}

			_, ds, err := a.load(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}

			tbl, err := bagel.FilterRecords(ds.Overview, bagel.Filter{
				Sessions: sessions,
				Operator: op,
				Statuses: statuses,
			})
			if err != nil {
				return err
			}

			tbl, err = bagel.SortBy(tbl, bagel.ParseSortKeys(sortBy))
			if err != nil {
				return err
			}

			if format == formatCSV {
				return bagel.WriteCSV(cmd.OutOrStdout(), tbl)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%d/%d participants matching filter\n",
				renderTable(tbl), bagel.CountUniqueSubjects(tbl), bagel.CountUniqueSubjects(ds.Overview))

			return errors.Wrap(err, "unable to write table")
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVar(&sessions, "session", nil, "Session to keep (repeatable, default: all sessions)")
	cmd.Flags().StringVar(&operator, "operator", string(bagel.OperatorAND), "How sessions are combined (AND or OR)")
	cmd.Flags().StringToStringVar(&statuses, "status", nil, "Pipeline status to match, as pipeline=STATUS")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Comma separated columns to sort by, prefixed with - for descending order")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format (table or csv)")

	return cmd
}

func renderTable(tbl *bagel.Table) string {
	pipelines := make(map[int]bool)
	for _, col := range bagel.PipelineColumns(tbl) {
		pipelines[tbl.Index(col)] = true
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(tbl.Columns...).
		Rows(tbl.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if pipelines[col] && row >= 0 && row < len(tbl.Rows) {
				return statusStyle(tbl.Rows[row][col]).Padding(0, 1)
			}

			return cellStyle
		}).
		String()
}

func newChartCmd(a *app) *cobra.Command {
	var (
		flags  datasetFlags
		kind   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "chart FILE",
		Short: "Render a status chart of a bagel as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, ds, err := a.load(cmd.Context(), args[0], flags)
			if err != nil {
				return err
			}

			c, err := svc.Chart(ds.ID, dashboard.ChartKind(kind), dashboard.Query{})
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return c.WriteSVG(cmd.OutOrStdout())
			}

			file, err := os.Create(output)
			if err != nil {
				return errors.Wrap(err, "unable to create chart file")
			}

			err = c.WriteSVG(file)
			if cerr := file.Close(); cerr != nil && err == nil {
				err = errors.Wrap(cerr, "unable to close chart file")
			}

			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&kind, "kind", string(dashboard.ChartRecords), "Chart to render (records or participants)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "SVG file to write, stdout when empty")

	return cmd
}
