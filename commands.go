package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"training-coach/internal/analysis"
	"training-coach/internal/service"
	"training-coach/internal/store"
	"training-coach/internal/tui"
)

const dateLayout = "2006-01-02"

// parseDay parses YYYY-MM-DD; empty means today
func parseDay(s string) (time.Time, error) {
	if s == "" {
		return analysis.Day(time.Now()), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}

// parseRange parses --from/--to, defaulting to the days ending today
func parseRange(from, to string, days int) (time.Time, time.Time, error) {
	end, err := parseDay(to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == "" {
		return end.AddDate(0, 0, -(days - 1)), end, nil
	}
	start, err := parseDay(from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from %s is after --to %s", start.Format(dateLayout), end.Format(dateLayout))
	}
	return start, end, nil
}

func (a *app) athleteID() string {
	return a.cfg.Athlete.ID
}

func (a *app) wellnessCmd() *cobra.Command {
	var (
		date                                          string
		hrv, rhr, weight, sleepHours                  float64
		sleepQuality                                  int
		fatigue, stress, sleepScore, motivation, sore int
		notes                                         string
	)
	cmd := &cobra.Command{
		Use:   "wellness",
		Short: "Submit a daily check-in and score readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			sig := analysis.DailySignal{AthleteID: a.athleteID(), Date: day}

			flags := cmd.Flags()
			optional := func(name string, v float64) *float64 {
				if !flags.Changed(name) {
					return nil
				}
				return &v
			}
			phys := analysis.Physiological{
				HRV:          optional("hrv", hrv),
				RestingHR:    optional("rhr", rhr),
				BodyWeightKg: optional("weight", weight),
			}
			if flags.Changed("sleep-hours") {
				phys.Sleep = &analysis.SleepMetrics{Hours: sleepHours, Quality: sleepQuality}
			}
			if phys.HRV != nil || phys.RestingHR != nil || phys.BodyWeightKg != nil || phys.Sleep != nil {
				sig.Physiological = &phys
			}
			if flags.Changed("fatigue") {
				sig.Subjective = &analysis.SubjectiveWellness{
					Fatigue:      fatigue,
					Stress:       stress,
					SleepQuality: sleepScore,
					Motivation:   motivation,
					Soreness:     sore,
					Notes:        notes,
				}
			}
			if sig.Physiological == nil && sig.Subjective == nil {
				return errors.New("nothing to submit: pass physiological flags and/or --fatigue with the other scores")
			}

			snap, err := a.wellness.Submit(cmd.Context(), sig)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Readiness %s: %.1f\n", day.Format(dateLayout), snap.Readiness)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&date, "date", "", "check-in date (YYYY-MM-DD, default today)")
	f.Float64Var(&hrv, "hrv", 0, "heart-rate variability (ms)")
	f.Float64Var(&rhr, "rhr", 0, "resting heart rate (bpm)")
	f.Float64Var(&weight, "weight", 0, "body weight (kg)")
	f.Float64Var(&sleepHours, "sleep-hours", 0, "hours slept")
	f.IntVar(&sleepQuality, "sleep-quality", 0, "device sleep quality 1-10")
	f.IntVar(&fatigue, "fatigue", 0, "fatigue 1-10")
	f.IntVar(&stress, "stress", 0, "stress 1-10")
	f.IntVar(&sleepScore, "sleep-score", 0, "perceived sleep 1-10")
	f.IntVar(&motivation, "motivation", 0, "motivation 1-10")
	f.IntVar(&sore, "soreness", 0, "muscle soreness 1-10")
	f.StringVar(&notes, "notes", "", "free-text notes")
	return cmd
}

func (a *app) loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Record daily training stress and inspect CTL/ATL/TSB",
	}

	var addDate string
	var tss float64
	var minutes int
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a day's training stress and recompute the following days",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(addDate)
			if err != nil {
				return err
			}
			if err := a.load.RecordDailyStress(cmd.Context(), a.athleteID(), day, tss, minutes); err != nil {
				return err
			}
			sum, err := a.load.Current(cmd.Context(), a.athleteID(), day)
			if err != nil {
				return err
			}
			printLoad(a, sum)
			return nil
		},
	}
	add.Flags().StringVar(&addDate, "date", "", "day (YYYY-MM-DD, default today)")
	add.Flags().Float64Var(&tss, "tss", 0, "training stress score")
	add.Flags().IntVar(&minutes, "minutes", 0, "training minutes")
	_ = add.MarkFlagRequired("tss")

	var showFrom, showTo string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the load summary for each day in a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(showFrom, showTo, service.ReportDays)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%-10s  %6s  %6s  %6s  %7s  %s\n", "Date", "TSS", "CTL", "ATL", "TSB", "Form")
			for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
				sum, err := a.load.Current(cmd.Context(), a.athleteID(), d)
				if err != nil {
					return err
				}
				printLoad(a, sum)
			}
			return nil
		},
	}
	show.Flags().StringVar(&showFrom, "from", "", "first day (default 6 days before --to)")
	show.Flags().StringVar(&showTo, "to", "", "last day (default today)")

	var recFrom, recTo string
	recompute := &cobra.Command{
		Use:   "recompute",
		Short: "Rebuild stored load summaries for a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(recFrom, recTo, analysis.CTLDays)
			if err != nil {
				return err
			}
			sums, err := a.load.Recompute(cmd.Context(), a.athleteID(), start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Recomputed %d days\n", len(sums))
			return nil
		},
	}
	recompute.Flags().StringVar(&recFrom, "from", "", "first day (default 41 days before --to)")
	recompute.Flags().StringVar(&recTo, "to", "", "last day (default today)")

	cmd.AddCommand(add, show, recompute)
	return cmd
}

func printLoad(a *app, s analysis.TrainingLoadSummary) {
	fmt.Fprintf(a.out, "%-10s  %6.1f  %6.1f  %6.1f  %+7.1f  %s\n",
		s.Date.Format(dateLayout), s.TSS, s.CTL, s.ATL, s.TSB, analysis.FormDescription(s.TSB))
}

func (a *app) readinessCmd() *cobra.Command {
	var date string
	var days int
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Show the day's readiness breakdown and recent trends",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			b, err := a.wellness.Readiness(cmd.Context(), a.athleteID(), day)
			if errors.Is(err, store.ErrSnapshotNotFound) {
				return fmt.Errorf("no check-in on %s", day.Format(dateLayout))
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Readiness %s: %.1f/100\n", day.Format(dateLayout), b.Score)
			fmt.Fprintf(a.out, "  HRV %.0f  RHR %.0f  Sleep %.0f  Subjective %.0f  Form %.0f\n", b.HRV, b.RHR, b.Sleep, b.Subjective, b.TSB)

			_, trends, err := a.wellness.Trends(cmd.Context(), a.athleteID(), day.AddDate(0, 0, -(days-1)), day)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Trends over %d days: readiness %s, HRV %s, RHR %s, sleep %s\n",
				days, trends.Readiness, trends.HRV, trends.RHR, trends.SleepHours)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&days, "days", service.ReportDays, "trend window in days")
	return cmd
}

func (a *app) complianceCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "compliance",
		Short: "Compare planned and completed work",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(from, to, service.ReportDays)
			if err != nil {
				return err
			}
			c, err := a.coaching.Compliance(cmd.Context(), a.athleteID(), start, end)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Compliance %s to %s\n", start.Format(dateLayout), end.Format(dateLayout))
			fmt.Fprintf(a.out, "  Completion      %5.1f%%\n", c.CompletionPercent)
			fmt.Fprintf(a.out, "  Key sessions    %5.1f%%\n", c.KeySessionCompletionPercent)
			fmt.Fprintf(a.out, "  Zone adherence  %5.1f%%\n", c.ZoneAdherencePercent)
			fmt.Fprintf(a.out, "  Unplanned       %5.0f min\n", c.UnplannedLoadMinutes)
			if len(c.Flags) > 0 {
				fmt.Fprintf(a.out, "  Flags: %s\n", strings.Join(c.Flags, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (default 6 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last day (default today)")
	return cmd
}

func printDecision(a *app, res service.AdjustmentResult) {
	d := res.Decision
	switch {
	case d.Blocked:
		fmt.Fprintf(a.out, "BLOCKED [%s] %s\n", d.RuleID, d.BlockingRule)
		fmt.Fprintf(a.out, "  Instead: %s\n", d.SafeAlternative)
	case d.BlockingRule != "":
		fmt.Fprintf(a.out, "APPROVED %s\n  %s\n", d.BlockingRule, d.SafeAlternative)
	default:
		fmt.Fprintln(a.out, "APPROVED")
	}
	if res.AuditID != "" {
		fmt.Fprintf(a.out, "  audit %s\n", res.AuditID)
	}
}

func (a *app) guardrailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guardrail",
		Short: "Gate workout adjustments and weekly load",
	}

	var date, workoutType, admin, justification string
	check := &cobra.Command{
		Use:   "check",
		Short: "Check whether a workout type may be scheduled on a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			res, err := a.coaching.CheckAdjustment(cmd.Context(), a.athleteID(), day, workoutType)
			if err != nil {
				return err
			}
			printDecision(a, res)
			return nil
		},
	}

	override := &cobra.Command{
		Use:   "override",
		Short: "Re-open a blocked adjustment on an admin's authority",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			res, err := a.coaching.CheckAdjustment(cmd.Context(), a.athleteID(), day, workoutType)
			if err != nil {
				return err
			}
			if !res.Decision.Blocked {
				printDecision(a, res)
				return nil
			}
			over, err := a.coaching.Override(cmd.Context(), a.athleteID(), res.Decision, admin, justification)
			if err != nil {
				return err
			}
			printDecision(a, over)
			return nil
		},
	}

	for _, c := range []*cobra.Command{check, override} {
		c.Flags().StringVar(&date, "date", "", "day (YYYY-MM-DD, default today)")
		c.Flags().StringVar(&workoutType, "type", "", "workout type, e.g. INTERVALS")
		_ = c.MarkFlagRequired("type")
	}
	override.Flags().StringVar(&admin, "admin", "", "approving coach or admin")
	override.Flags().StringVar(&justification, "justification", "", "reason for the override")

	var weekStart string
	var proposed float64
	load := &cobra.Command{
		Use:   "load",
		Short: "Check a proposed weekly TSS against the trailing week",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(weekStart)
			if err != nil {
				return err
			}
			res, err := a.coaching.CheckWeeklyLoad(cmd.Context(), a.athleteID(), day, proposed)
			if err != nil {
				return err
			}
			printDecision(a, res)
			return nil
		},
	}
	load.Flags().StringVar(&weekStart, "week-start", "", "first day of the proposed week (default today)")
	load.Flags().Float64Var(&proposed, "tss", 0, "proposed weekly TSS")
	_ = load.MarkFlagRequired("tss")

	audit := &cobra.Command{
		Use:   "audit",
		Short: "List recorded guardrail decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := a.store.ListAudit(cmd.Context(), a.athleteID())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(a.out, "%s  %-10s  %-17s  %-8s  %s\n",
					e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Decision, e.RuleID, e.PerformedBy, e.Reason)
				if e.Justification != "" {
					fmt.Fprintf(a.out, "    justification: %s\n", e.Justification)
				}
			}
			return nil
		},
	}

	cmd.AddCommand(check, override, load, audit)
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Weekly coaching report with insights and recovery advice",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(from, to, service.ReportDays)
			if err != nil {
				return err
			}
			r, err := a.coaching.WeeklyReport(cmd.Context(), a.athleteID(), start, end)
			if err != nil {
				return err
			}
			printReport(a, r)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (default 6 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last day (default today)")
	return cmd
}

func printReport(a *app, r *service.Report) {
	w := a.out
	fmt.Fprintf(w, "Report for %s, %s to %s (%d check-ins)\n\n",
		r.AthleteID, r.Start.Format(dateLayout), r.End.Format(dateLayout), len(r.Snapshots))

	fmt.Fprintf(w, "Average readiness %.1f (%s), HRV %s, sleep %.1f h\n",
		r.Trends.AverageReadiness, r.Trends.Readiness, r.Trends.HRV, r.Trends.AverageSleepHours)
	fmt.Fprintf(w, "Compliance %d%%, volume %.1f h\n", r.Insights.ComplianceRate, r.Insights.TrainingVolumeHours)

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(w, "\n%s\n", title)
		for _, l := range lines {
			fmt.Fprintf(w, "  - %s\n", l)
		}
	}
	section("Flags", r.Insights.Flags)
	section("Recommendations", r.Insights.Recommendations)
	section("Achievements", r.Insights.Achievements)

	var rules []string
	for _, h := range r.Recovery.HardRules {
		rules = append(rules, fmt.Sprintf("%s: %s", h.Name, h.Recommendation))
	}
	section("Recovery rules", rules)
	section("Safe adjustments", r.Recovery.SafeAdjustments)

	if r.UsedFallback {
		fmt.Fprintf(w, "\nCoach: %s\n", r.CoachText)
		return
	}
	section("Coach suggestions", r.Suggestions)
	if n := len(r.RejectedSuggestions); n > 0 {
		fmt.Fprintf(w, "\n(%d suggestion(s) withheld at current readiness)\n", n)
	}
}

func (a *app) importFitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-fit FILE...",
		Short: "Import FIT activity files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				if err := a.importFile(cmd.Context(), path); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}
			return nil
		},
	}
}

func (a *app) importFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	act, err := a.importer.ImportFIT(ctx, a.athleteID(), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s  %-10s  %-12s  %5.0f min  TSS %5.1f  Z1/Z2/Z3 %.0f/%.0f/%.0f min\n",
		act.Date, act.ExternalID, act.Type, act.DurationSeconds/60, act.TSS, act.Z1Minutes, act.Z2Minutes, act.Z3Minutes)
	return nil
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the readiness dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(tui.NewApp(a.query, a.athleteID()), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running dashboard: %w", err)
			}
			return nil
		},
	}
}

func (a *app) thresholdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Record and show LT1/LT2 power thresholds",
	}

	var (
		lt1, lt2, ftp, confidence float64
		testMethod, date          string
	)
	set := &cobra.Command{
		Use:   "set",
		Short: "Record thresholds from LT1/LT2, an FTP test or an FTP estimate",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			var est analysis.Estimate
			switch {
			case lt1 > 0 || lt2 > 0:
				t, err := analysis.NewThresholds(lt1, lt2)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("confidence") {
					confidence = analysis.DefaultTestConfidence(analysis.TestLabLactate)
				}
				est = analysis.Estimate{Thresholds: t, Method: analysis.MethodLabLactate, Confidence: confidence / 100}
			case testMethod != "":
				m := analysis.TestMethod(strings.ToUpper(testMethod))
				if !cmd.Flags().Changed("confidence") {
					confidence = analysis.DefaultTestConfidence(m)
				}
				result, err := analysis.NewFTPTestResult(ftp, day, m, confidence)
				if err != nil {
					return err
				}
				if est, err = analysis.EstimateFromTest(result); err != nil {
					return err
				}
			default:
				if est, err = analysis.EstimateFromFTP(ftp, analysis.MethodEstimated); err != nil {
					return err
				}
			}
			est.Date = day

			if err := a.store.SaveThresholds(cmd.Context(), a.athleteID(), est); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "LT1 %.0f W, LT2 %.0f W (%s, confidence %.2f)\n", est.LT1, est.LT2, est.Method, est.Confidence)
			return nil
		},
	}
	set.Flags().Float64Var(&lt1, "lt1", 0, "LT1 power (W), from a lab test")
	set.Flags().Float64Var(&lt2, "lt2", 0, "LT2 power (W), from a lab test")
	set.Flags().Float64Var(&ftp, "ftp", 0, "FTP (W)")
	set.Flags().StringVar(&testMethod, "test", "", "FTP test protocol: LAB_LACTATE, FIELD_RAMP, FIELD_20MIN or ESTIMATED")
	set.Flags().Float64Var(&confidence, "confidence", 0, "confidence percent 0-100")
	set.Flags().StringVar(&date, "date", "", "test date (default today)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the latest thresholds with their zones and prescription bands",
		RunE: func(cmd *cobra.Command, args []string) error {
			est, err := a.store.LatestThresholds(cmd.Context(), a.athleteID())
			if errors.Is(err, store.ErrThresholdsNotFound) {
				return errors.New("no thresholds recorded; run 'thresholds set' first")
			}
			if err != nil {
				return err
			}
			zones, err := analysis.DeriveZones(est.LT1, est.LT2)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s  LT1 %.0f W  LT2 %.0f W  (%s, confidence %.2f)\n",
				est.Date.Format(dateLayout), est.LT1, est.LT2, est.Method, est.Confidence)
			fmt.Fprintf(a.out, "  Z1 up to %.0f W, Z2 up to %.0f W, Z3 up to %.0f W\n", zones.Z1Upper, zones.Z2Upper, zones.Z3Upper)

			bands, err := analysis.BandsForEstimate(*est)
			if err != nil {
				return err
			}
			for _, b := range bands {
				fmt.Fprintf(a.out, "  %s  %.0f-%.0f W\n", b.Zone, b.Target.Low, b.Target.High)
			}
			return nil
		},
	}

	cmd.AddCommand(set, show)
	return cmd
}

func (a *app) planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage planned workouts",
	}

	var (
		id, date, workoutType string
		minutes, z1, z2, z3   float64
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a planned workout",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			if id == "" {
				id = uuid.NewString()
			}
			w, err := analysis.NewPlannedWorkout(id, day, analysis.WorkoutType(strings.ToUpper(workoutType)), minutes, analysis.Distribution{Z1: z1, Z2: z2, Z3: z3})
			if err != nil {
				return err
			}
			if err := a.store.UpsertPlannedWorkout(cmd.Context(), a.athleteID(), w); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Planned %s %s on %s (%.0f min)\n", w.ID, w.Type, day.Format(dateLayout), w.DurationMinutes)
			return nil
		},
	}
	f := add.Flags()
	f.StringVar(&id, "id", "", "workout id (default random)")
	f.StringVar(&date, "date", "", "day (YYYY-MM-DD, default today)")
	f.StringVar(&workoutType, "type", string(analysis.WorkoutEndurance), "workout type")
	f.Float64Var(&minutes, "minutes", 0, "planned duration in minutes")
	f.Float64Var(&z1, "z1", 0, "planned Z1 percent")
	f.Float64Var(&z2, "z2", 0, "planned Z2 percent")
	f.Float64Var(&z3, "z3", 0, "planned Z3 percent")
	_ = add.MarkFlagRequired("minutes")

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List planned workouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(from, to, service.ReportDays)
			if err != nil {
				return err
			}
			planned, err := a.store.ListPlannedWorkouts(cmd.Context(), a.athleteID(), start, end)
			if err != nil {
				return err
			}
			for _, p := range planned {
				fmt.Fprintf(a.out, "%s  %-10s  %5.0f min  %.0f/%.0f/%.0f  %s\n",
					p.Date.Format(dateLayout), p.Type, p.DurationMinutes, p.Intensity.Z1, p.Intensity.Z2, p.Intensity.Z3, p.ID)
			}
			return nil
		},
	}
	list.Flags().StringVar(&from, "from", "", "first day (default 6 days before --to)")
	list.Flags().StringVar(&to, "to", "", "last day (default today)")

	cmd.AddCommand(add, list)
	return cmd
}

func (a *app) activityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "List and tag completed activities",
	}

	var from, to string
	list := &cobra.Command{
		Use:   "list",
		Short: "List completed activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseRange(from, to, service.DashboardDays)
			if err != nil {
				return err
			}
			acts, err := a.store.ListActivities(cmd.Context(), a.athleteID(), start, end)
			if err != nil {
				return err
			}
			for _, act := range acts {
				fmt.Fprintf(a.out, "%s  %-24s  %-10s  %5.0f min  TSS %5.1f  %s\n",
					act.Date, act.ExternalID, act.Type, act.DurationSeconds/60, act.TSS, act.Classification)
			}
			return nil
		},
	}
	list.Flags().StringVar(&from, "from", "", "first day (default 27 days before --to)")
	list.Flags().StringVar(&to, "to", "", "last day (default today)")

	classify := &cobra.Command{
		Use:   "classify EXTERNAL_ID CLASSIFICATION",
		Short: "Tag an activity, e.g. ad_hoc to count it as unplanned",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.SetClassification(cmd.Context(), a.athleteID(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Tagged %s as %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(list, classify)
	return cmd
}
