package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/alex-ilgayev/socsim/pkg/narrative"
	"github.com/alex-ilgayev/socsim/pkg/output"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// timeNow stamps one-shot narratives.
var timeNow = time.Now

func newIntelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "intel <label>",
		Short: "Generate one threat intelligence narrative",
		Long: `Requests a single threat intelligence narrative for a threat label and prints it.
When the AI provider is unavailable a narrative from the local feed is printed
together with the reason.

Examples:
  socsim intel "SQL Injection"
  socsim intel --lang es "Anomalía DDoS"`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runIntel,
		SilenceUsage: true,
	}
}

func newAdviseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advise <description>",
		Short: "Assess an infrastructure description",
		Long: `Sends a description of an infrastructure to the security advisor and prints the
risk level, a summary, recommended services and immediate steps.

Examples:
  socsim advise "Public PostgreSQL on port 5432, no firewall, shared admin password"`,
		Args:         cobra.MinimumNArgs(1),
		RunE:         runAdvise,
		SilenceUsage: true,
	}
}

func runIntel(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	service, err := newNarrativeService(ctx, cfg, cfg.seededRand())
	if err != nil {
		return err
	}

	display, err := output.NewConsoleDisplay(stdout, cfg.Lang, false, nil)
	if err != nil {
		return fmt.Errorf("failed to create console display: %w", err)
	}

	label := strings.Join(args, " ")
	out := service.Refresh(ctx, label, cfg.Lang)
	display.PrintNarrative(out.Event(timeNow()))
	return nil
}

func runAdvise(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	service, err := newNarrativeService(ctx, cfg, cfg.seededRand())
	if err != nil {
		return err
	}

	display, err := output.NewConsoleDisplay(stdout, cfg.Lang, false, nil)
	if err != nil {
		return fmt.Errorf("failed to create console display: %w", err)
	}

	advice, err := service.Advise(ctx, strings.Join(args, " "), cfg.Lang)
	if err != nil {
		logrus.WithError(err).WithField("kind", narrative.KindOf(err)).Debug("Advisor request failed")
		display.PrintInfo("%s", narrative.UserMessage(cfg.Lang, err))
		return fmt.Errorf("advisor request failed: %w", err)
	}

	display.PrintAdvice(advice)
	return nil
}
