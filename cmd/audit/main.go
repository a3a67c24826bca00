package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/examtrail/examtrail-backend/internal/model"
	"github.com/examtrail/examtrail-backend/internal/proctor"
	"github.com/examtrail/examtrail-backend/internal/shuffle"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "examtrail-audit",
		Short: "Offline audit tooling for exported exam data",
		Long: "Regenerates presented layouts and folds telemetry event logs " +
			"without a live database. Inputs are JSON exports.",
	}

	cmd.AddCommand(newLayoutCmd())
	cmd.AddCommand(newReportCmd())
	return cmd
}

// ─── layout ─────────────────────────────────────────────────────────

func newLayoutCmd() *cobra.Command {
	var (
		bankPath         string
		studentID        int
		assignmentID     string
		strategy         string
		shuffleQuestions bool
		shuffleOptions   bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Regenerate the layout a student saw from a question bank export",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(bankPath)
			if err != nil {
				return fmt.Errorf("read bank: %w", err)
			}

			var bank []model.Question
			if err := json.Unmarshal(raw, &bank); err != nil {
				return fmt.Errorf("parse bank: %w", err)
			}

			seed := shuffle.DeriveSeed(studentID, assignmentID)
			result, err := shuffle.Randomize(bank, shuffle.RandomizeConfig{
				Strategy:         shuffle.Strategy(strategy),
				Seed:             seed,
				ShuffleQuestions: shuffleQuestions,
				ShuffleOptions:   shuffleOptions,
			})
			if err != nil {
				return err
			}

			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&bankPath, "bank", "", "path to question bank JSON export")
	cmd.Flags().IntVar(&studentID, "student", 0, "student ID")
	cmd.Flags().StringVar(&assignmentID, "assignment", "", "assignment ID")
	cmd.Flags().StringVar(&strategy, "strategy", "SIMPLE_SHUFFLE", "randomization strategy")
	cmd.Flags().BoolVar(&shuffleQuestions, "shuffle-questions", true, "whether question order was shuffled")
	cmd.Flags().BoolVar(&shuffleOptions, "shuffle-options", true, "whether option order was shuffled")
	cmd.MarkFlagRequired("bank")
	cmd.MarkFlagRequired("student")
	cmd.MarkFlagRequired("assignment")

	return cmd
}

// ─── report ─────────────────────────────────────────────────────────

// auditReport is the printed output of the report subcommand.
type auditReport struct {
	GeneratedAt  time.Time                `json:"generated_at"`
	Sessions     []proctor.FlaggedSession `json:"sessions"`
	FlaggedCount int                      `json:"flagged_count"`
	EventTypes   map[string]int           `json:"event_types"`
}

func newReportCmd() *cobra.Command {
	var eventsPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fold an exported event log into a suspicion report",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(eventsPath)
			if err != nil {
				return fmt.Errorf("read events: %w", err)
			}

			var events []model.ExamEvent
			if err := json.Unmarshal(raw, &events); err != nil {
				return fmt.Errorf("parse events: %w", err)
			}

			now := time.Now()
			sessions, err := proctor.DeriveSessions(events, now)
			if err != nil {
				return err
			}

			ranked := proctor.Rank(proctor.Evaluate(sessions))

			report := auditReport{
				GeneratedAt: now,
				Sessions:    ranked,
				EventTypes:  proctor.EventTypeFrequency(events),
			}
			for _, sess := range ranked {
				if sess.Flagged {
					report.FlaggedCount++
				}
			}

			return printJSON(cmd, report)
		},
	}

	cmd.Flags().StringVar(&eventsPath, "events", "", "path to event log JSON export")
	cmd.MarkFlagRequired("events")

	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
