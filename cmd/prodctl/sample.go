package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/hazard-product-generator/internal/domain"
)

// sampleStart is the fixed issue time for reproducible fixtures.
var sampleStart = time.Date(2026, time.June, 15, 18, 0, 0, 0, time.UTC)

func newSampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Print a sample event set for a hazard type",
		Args:  cobra.NoArgs,
		RunE:  runSample,
	}
	cmd.Flags().String("hazard", "FF.A", "hazard key PHEN.SIG or PHEN.SIG.SUBTYPE")
	cmd.Flags().StringSlice("ugc", []string{"COC005"}, "UGC codes of the event area")
	cmd.Flags().String("site", "BOU", "issuing site ID")
	cmd.Flags().String("start", sampleStart.Format(time.RFC3339), "event start time (RFC3339)")
	cmd.Flags().Duration("duration", 8*time.Hour, "event duration")
	cmd.Flags().Int("count", 1, "number of events")
	cmd.Flags().Bool("issue", false, "set the issue flag")
	cmd.Flags().String("mode", string(domain.ModePractice), "session hazard mode")
	return cmd
}

func runSample(cmd *cobra.Command, _ []string) error {
	hazard, _ := cmd.Flags().GetString("hazard")
	ugcs, _ := cmd.Flags().GetStringSlice("ugc")
	siteID, _ := cmd.Flags().GetString("site")
	startStr, _ := cmd.Flags().GetString("start")
	duration, _ := cmd.Flags().GetDuration("duration")
	count, _ := cmd.Flags().GetInt("count")
	issue, _ := cmd.Flags().GetBool("issue")
	mode, _ := cmd.Flags().GetString("mode")

	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return fmt.Errorf("--start: %w", err)
	}
	set, err := sampleSet(hazard, ugcs, siteID, start, duration, count)
	if err != nil {
		return err
	}
	set.Attributes.IssueFlag = issue
	set.Attributes.Session.HazardMode = domain.HazardMode(strings.ToUpper(mode))
	return writeIndented(cmd.OutOrStdout(), set)
}

// sampleSet builds count pending events of one hazard type. Event IDs and
// creation times come from a fake clock so the output is reproducible.
func sampleSet(hazard string, ugcs []string, siteID string, start time.Time, duration time.Duration, count int) (domain.EventSet, error) {
	parts := strings.Split(hazard, ".")
	if len(parts) < 2 || len(parts) > 3 || len(parts[0]) != 2 || len(parts[1]) != 1 {
		return domain.EventSet{}, fmt.Errorf("hazard %q is not PHEN.SIG[.SUBTYPE]", hazard)
	}
	if count < 1 {
		return domain.EventSet{}, fmt.Errorf("--count must be positive, got %d", count)
	}
	if len(ugcs) == 0 {
		return domain.EventSet{}, errors.New("at least one --ugc is required")
	}

	clock := clockwork.NewFakeClockAt(start.Add(-time.Hour).UTC())
	areas := make([]any, len(ugcs))
	for i, u := range ugcs {
		areas[i] = strings.ToUpper(u)
	}

	set := domain.EventSet{
		Attributes: domain.EventSetAttributes{
			CurrentTime: start.UTC(),
			SiteID:      siteID,
		},
	}
	for i := range count {
		ev := domain.HazardEvent{
			EventID:      fmt.Sprintf("HZ-%d", 1001+i),
			Status:       domain.StatusPending,
			Phen:         parts[0],
			Sig:          parts[1],
			GeoType:      domain.GeoArea,
			StartTime:    start.UTC(),
			EndTime:      start.Add(duration).UTC(),
			CreationTime: clock.Now(),
			Attributes:   domain.Attributes{"ugcs": areas},
		}
		if len(parts) == 3 {
			ev.Subtype = parts[2]
		}
		set.Events = append(set.Events, ev)
		clock.Advance(time.Minute)
	}
	return set, nil
}
