package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-planner-api/internal/dto"
	"github.com/noah-isme/leave-planner-api/internal/service"
	"github.com/noah-isme/leave-planner-api/pkg/config"
)

type recommendOptions struct {
	snapshot   string
	start      string
	searchDays int
	minWindow  int
	maxWindow  int
	topN       int
	narrate    bool
	asJSON     bool
	summary    bool
	verbose    bool
}

func newRecommendCommand() *cobra.Command {
	opts := &recommendOptions{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank safe leave windows for a TOML snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.snapshot, "snapshot", "s", "", "attendance snapshot (TOML)")
	flags.StringVar(&opts.start, "start", "", "first day of the search, YYYY-MM-DD (default today)")
	flags.IntVar(&opts.searchDays, "search-days", 0, "days to scan")
	flags.IntVar(&opts.minWindow, "min-window", 0, "shortest window in days")
	flags.IntVar(&opts.maxWindow, "max-window", 0, "longest window in days")
	flags.IntVar(&opts.topN, "top", 0, "number of options to print")
	flags.BoolVar(&opts.narrate, "narrate", false, "ask the configured narrator for advice")
	flags.BoolVar(&opts.asJSON, "json", false, "print the raw result as JSON")
	flags.BoolVar(&opts.summary, "summary", false, "print the plain-text digest sent to the narrator")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log engine progress to stderr")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}

func runRecommend(cmd *cobra.Command, opts *recommendOptions) error {
	snap, err := LoadSnapshot(opts.snapshot)
	if err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := zap.NewNop()
	if opts.verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer log.Sync() //nolint:errcheck
	}

	var narrator *service.NarratorService
	if opts.narrate {
		narrator = service.NewNarratorService(service.NarratorConfig{
			Enabled: cfg.Narrator.Enabled,
			BaseURL: cfg.Narrator.BaseURL,
			APIKey:  cfg.Narrator.APIKey,
			Model:   cfg.Narrator.Model,
			Timeout: cfg.Narrator.Timeout,
		}, nil, nil, log)
	}

	svc := service.NewPlannerService(service.PlannerRepositories{}, nil, narrator, nil, nil, nil, log, service.PlannerConfig{
		GlobalThreshold: cfg.Planner.GlobalThreshold,
		SearchDays:      cfg.Planner.SearchDays,
		MinWindow:       cfg.Planner.MinWindow,
		MaxWindow:       cfg.Planner.MaxWindow,
		TopN:            cfg.Planner.TopN,
		Workers:         cfg.Planner.Workers,
		Location:        cfg.Planner.Location(),
	})

	req := snap.Request(opts.searchParams(cmd))
	req.Narrate = opts.narrate
	rec, err := svc.Simulate(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case opts.asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rec.Result)
	case opts.summary:
		_, err := fmt.Fprintln(out, rec.SummaryText)
		return err
	default:
		return printRecommendation(out, rec, snap)
	}
}

// searchParams keeps only the flags the user actually set.
func (o *recommendOptions) searchParams(cmd *cobra.Command) dto.SearchParams {
	sp := dto.SearchParams{StartDate: o.start}
	flags := cmd.Flags()
	if flags.Changed("search-days") {
		sp.SearchDays = &o.searchDays
	}
	if flags.Changed("min-window") {
		sp.MinWindow = &o.minWindow
	}
	if flags.Changed("max-window") {
		sp.MaxWindow = &o.maxWindow
	}
	if flags.Changed("top") {
		sp.TopN = &o.topN
	}
	return sp
}

func printRecommendation(out io.Writer, rec *service.Recommendation, snap SnapshotFile) error {
	if !rec.Success {
		_, err := fmt.Fprintf(out, "No safe leave window found from %s.\n\n%s\n", rec.StartDate, rec.AIAdvice)
		return err
	}
	for _, opt := range rec.VacationOptions {
		fmt.Fprintf(out, "Option %d: %s to %s (%d days, %d leave, %d holidays) score %.2f\n",
			opt.Rank, opt.StartDate, opt.EndDate, opt.TotalDays, opt.LeaveDays, opt.Holidays, opt.Score)
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "  SUBJECT\tNOW\tMISSED\tAFTER\tBUFFER")
		for _, sub := range snap.Subjects {
			impact, ok := opt.SubjectProjections[sub.ID]
			if !ok {
				continue
			}
			fmt.Fprintf(tw, "  %s\t%.1f%%\t%d\t%.1f%%\t%+.1f%%\n",
				impact.SubjectName, impact.CurrentPercentage, impact.MissedLectures, impact.ProjectedPercentage, impact.ProjectedBuffer)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	_, err := fmt.Fprintln(out, rec.AIAdvice)
	return err
}
