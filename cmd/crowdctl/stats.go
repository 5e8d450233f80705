package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/couchcryptid/crowd-safety-sim/internal/domain"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Stats summarizes many generations of the default registry.
type Stats struct {
	Seed          uint64                            `yaml:"seed"`
	Generations   int                               `yaml:"generations"`
	Records       int                               `yaml:"records"`
	Threshold     int                               `yaml:"threshold"`
	HighRiskShare float64                           `yaml:"highRiskShare"`
	MeanRisk      float64                           `yaml:"meanRisk"`
	Scenarios     map[domain.Scenario]ScenarioStats `yaml:"scenarios"`
	Roads         map[domain.RoadCondition]int      `yaml:"roads"`
	Electricity   map[domain.ElectricityStatus]int  `yaml:"electricity"`
	Violations    int                               `yaml:"violations"`
}

// ScenarioStats aggregates the records generated under one scenario.
type ScenarioStats struct {
	Count          int     `yaml:"count"`
	Share          float64 `yaml:"share"`
	MeanRisk       float64 `yaml:"meanRisk"`
	MeanConfidence float64 `yaml:"meanConfidence"`
	MeanLoad       float64 `yaml:"meanLoad"` // crowd / base capacity
}

func statsCmd() *cobra.Command {
	var (
		seed        uint64
		generations int
		threshold   int
		format      string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the scenario mix and derived fields over many generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if generations < 1 {
				return errors.New("--generations must be at least 1")
			}
			st, err := collectStats(seed, generations, threshold)
			if err != nil {
				return err
			}
			switch format {
			case "text":
				return writeStatsText(cmd.OutOrStdout(), st)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(st); err != nil {
					return err
				}
				return enc.Close()
			default:
				return fmt.Errorf("unknown format %q: want text or yaml", format)
			}
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().IntVarP(&generations, "generations", "n", 1000, "number of snapshots to generate")
	cmd.Flags().IntVar(&threshold, "threshold", domain.DefaultRiskThreshold, "high-risk threshold")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or yaml")
	return cmd
}

func collectStats(seed uint64, generations, threshold int) (Stats, error) {
	reg := domain.DefaultRegistry()
	gen, err := domain.NewGenerator(reg, domain.NewSource(seed))
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		Seed:        seed,
		Generations: generations,
		Threshold:   threshold,
		Scenarios:   make(map[domain.Scenario]ScenarioStats, len(domain.Scenarios)),
		Roads:       make(map[domain.RoadCondition]int),
		Electricity: make(map[domain.ElectricityStatus]int),
	}
	var riskSum float64
	highRisk := 0
	for range generations {
		snap := gen.Generate()
		if domain.CheckSnapshot(reg, snap) != nil {
			st.Violations++
		}
		highRisk += domain.CountAtOrAbove(snap.Records, threshold)
		for _, r := range snap.Records {
			riskSum += float64(r.RiskScore)
			s := st.Scenarios[r.Scenario]
			s.Count++
			s.MeanRisk += float64(r.RiskScore)
			s.MeanConfidence += r.Confidence
			s.MeanLoad += float64(r.CurrentCrowd) / float64(r.BaseCapacity)
			st.Scenarios[r.Scenario] = s
			st.Roads[r.RoadCondition]++
			st.Electricity[r.ElectricityStatus]++
		}
		st.Records += len(snap.Records)
	}

	st.MeanRisk = riskSum / float64(st.Records)
	st.HighRiskShare = float64(highRisk) / float64(st.Records)
	for sc, s := range st.Scenarios {
		n := float64(s.Count)
		s.Share = n / float64(st.Records)
		s.MeanRisk /= n
		s.MeanConfidence /= n
		s.MeanLoad /= n
		st.Scenarios[sc] = s
	}
	return st, nil
}

func writeStatsText(w io.Writer, st Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "seed %d, %d generations, %d records\n", st.Seed, st.Generations, st.Records)
	fmt.Fprintf(tw, "mean risk %.1f, %.1f%% at or above %d, %d invalid snapshots\n\n",
		st.MeanRisk, st.HighRiskShare*100, st.Threshold, st.Violations)

	fmt.Fprintln(tw, "SCENARIO\tSHARE\tMEAN RISK\tMEAN CONFIDENCE\tMEAN LOAD")
	for _, sc := range domain.Scenarios {
		s := st.Scenarios[sc]
		fmt.Fprintf(tw, "%s\t%.2f%%\t%.1f\t%.3f\t%.2fx\n", sc, s.Share*100, s.MeanRisk, s.MeanConfidence, s.MeanLoad)
	}

	fmt.Fprintln(tw, "\nROAD\tCOUNT")
	for _, rc := range sortedKeys(st.Roads) {
		fmt.Fprintf(tw, "%s\t%d\n", rc, st.Roads[rc])
	}
	fmt.Fprintln(tw, "\nELECTRICITY\tCOUNT")
	for _, es := range sortedKeys(st.Electricity) {
		fmt.Fprintf(tw, "%s\t%d\n", es, st.Electricity[es])
	}
	return tw.Flush()
}

func sortedKeys[K ~string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
