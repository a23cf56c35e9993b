package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"budgetproposal/dataset"
	"budgetproposal/proposal"
	"budgetproposal/services"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	totalStyle   = lipgloss.NewStyle().Bold(true)
	grandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD700"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

var kindOrder = []proposal.GroupKind{proposal.KindQuarter, proposal.KindNewsletters, proposal.KindSports}

var kindLabels = map[proposal.GroupKind]string{
	proposal.KindQuarter:     "Quarter groups",
	proposal.KindNewsletters: "Newsletter groups",
	proposal.KindSports:      "Sports groups",
}

// load reads, validates and builds the configured data file, then computes
// its totals.
func (a *app) load() (*proposal.Proposal, *proposal.Summary, error) {
	var (
		f   *dataset.File
		err error
	)
	if a.cfg.Data == "" {
		slog.Debug("using bundled data file")
		f, err = dataset.Default()
	} else {
		slog.Debug("loading data file", "path", a.cfg.Data)
		f, err = dataset.LoadFile(a.cfg.Data)
	}
	if err != nil {
		return nil, nil, err
	}

	p, err := f.Build()
	if err != nil {
		return nil, nil, err
	}
	s, err := proposal.Compute(p)
	if err != nil {
		return nil, nil, fmt.Errorf("compute totals: %w", err)
	}
	slog.Debug("computed totals", "groups", len(p.Groups), "events", p.EventCount(), "ex_vat", s.Grand.ExVAT.String())
	return p, s, nil
}

func (a *app) reconcile(p *proposal.Proposal, s *proposal.Summary) []proposal.Discrepancy {
	drift := proposal.Reconcile(p, s, a.cfg.Tolerance())
	for _, d := range drift {
		slog.Warn("published total differs from computed total",
			"scope", d.Scope, "group", d.Group, "name", d.Name,
			"published", d.Published.String(), "computed", d.Computed.String(), "diff", d.Diff().String())
	}
	return drift
}

func (a *app) generateCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the proposal workbook, PDF report and CSV export",
		Long: `Validate the data file, compute every total and render the requested
formats into the output directory. Nothing is written when validation fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, s, err := a.load()
			if err != nil {
				return reportLoadError(cmd.ErrOrStderr(), err)
			}
			a.reconcile(p, s)

			if date == "" {
				date = time.Now().Format("2 January 2006")
			}
			data := services.BuildExportData(p, s, services.ExportOptions{
				GeneratedDate: date,
				Formulas:      a.cfg.Excel.Formulas,
			})
			paths, err := services.WriteOutputs(a.cfg.Output.Dir, a.cfg.Output.Name, a.cfg.Formats(), data)
			if err != nil {
				return err
			}
			for _, path := range paths {
				slog.Info("wrote artifact", "path", path)
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			slog.Info("proposal generated",
				"document_id", data.DocumentID,
				"total_inc_vat", services.FormatMoney(data.Currency, data.IncVAT))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringP("out", "o", "output", "output directory")
	flags.String("name", "proposal", "output file name without extension")
	flags.StringSlice("format", []string{"xlsx", "pdf", "csv"}, "formats to write (xlsx, pdf, csv)")
	flags.Bool("formulas", true, "write spreadsheet formulas next to the computed values")
	flags.StringVar(&date, "date", "", "date printed on the documents (default: today)")
	_ = a.v.BindPFlag("output.dir", flags.Lookup("out"))
	_ = a.v.BindPFlag("output.name", flags.Lookup("name"))
	_ = a.v.BindPFlag("output.formats", flags.Lookup("format"))
	_ = a.v.BindPFlag("excel.formulas", flags.Lookup("formulas"))

	return cmd
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the data file and report drift from published totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			p, s, err := a.load()
			if err != nil {
				return reportLoadError(cmd.ErrOrStderr(), err)
			}

			drift := a.reconcile(p, s)
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ %d events in %d groups are valid", p.EventCount(), len(p.Groups))))
			if len(drift) == 0 {
				fmt.Fprintln(out, subtleStyle.Render("All published totals match the computed totals."))
				return nil
			}

			fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("%d published total(s) differ from the computed totals:", len(drift))))
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("Scope"),
				headerStyle.Render("Name"),
				headerStyle.Render("Published"),
				headerStyle.Render("Computed"),
				headerStyle.Render("Difference"))
			for _, d := range drift {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Scope, d.Name,
					services.FormatAmount(d.Published), services.FormatAmount(d.Computed), services.FormatAmount(d.Diff()))
			}
			return w.Flush()
		},
	}
}

func (a *app) totalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Print the group and grand totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, s, err := a.load()
			if err != nil {
				return reportLoadError(cmd.ErrOrStderr(), err)
			}
			return printTotals(cmd.OutOrStdout(), p, s)
		},
	}
}

func (a *app) dataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "data",
		Short: "Print the bundled data file, as a starting point for a custom one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(dataset.DefaultBytes())
			return err
		},
	}
}

func printTotals(out io.Writer, p *proposal.Proposal, s *proposal.Summary) error {
	fmt.Fprintln(out, totalStyle.Render(p.Title)+" "+subtleStyle.Render(p.Reference))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
		headerStyle.Render("Group"),
		headerStyle.Render("Events"),
		headerStyle.Render("Total ("+p.Currency+")"),
		headerStyle.Render("Share"))
	for _, key := range s.Rollup {
		g, _ := p.Group(key)
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t\n", g.Label, len(g.Events),
			services.FormatAmount(s.GroupTotal(key)), services.FormatPercent(s.Share(key)))
	}
	fmt.Fprintf(w, "\t\t\t\t\n")
	for _, k := range kindOrder {
		if total, ok := s.Kinds[k]; ok {
			fmt.Fprintf(w, "%s\t\t%s\t%s\t\n", kindLabels[k], services.FormatAmount(total), services.FormatPercent(s.ShareOf(total)))
		}
	}
	fmt.Fprintf(w, "\t\t\t\t\n")
	fmt.Fprintf(w, "%s\t\t%s\t\t\n", "All events subtotal", services.FormatAmount(s.Grand.EventsTotal))
	fmt.Fprintf(w, "%s\t\t%s\t\t\n", totalStyle.Render("Grand total (ex-VAT)"), totalStyle.Render(services.FormatAmount(s.Grand.ExVAT)))
	fmt.Fprintf(w, "%s\t\t%s\t\t\n", "VAT ("+services.FormatRate(p.Rates.Tax)+")", services.FormatAmount(s.Grand.VAT))
	fmt.Fprintf(w, "%s\t\t%s\t\t\n", grandStyle.Render("Grand total (inc. VAT)"), grandStyle.Render(services.FormatAmount(s.Grand.IncVAT)))
	if s.Grand.WithContingency != nil && p.Rates.Contingency != nil {
		fmt.Fprintf(w, "%s\t\t%s\t\t\n", "With "+services.FormatRate(*p.Rates.Contingency)+" contingency", services.FormatAmount(*s.Grand.WithContingency))
	}
	return w.Flush()
}

// reportLoadError prints every validation violation before returning a short
// error for the exit status.
func reportLoadError(errOut io.Writer, err error) error {
	var verr *dataset.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	fmt.Fprintln(errOut, errorStyle.Render(fmt.Sprintf("data file has %d problem(s):", len(verr.Violations))))
	for _, v := range verr.Violations {
		fmt.Fprintf(errOut, "  %s: %s\n", v.Path, v.Err)
	}
	return fmt.Errorf("validation failed with %d problem(s)", len(verr.Violations))
}
