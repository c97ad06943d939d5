package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"godoe/domain/core"
	"godoe/domain/factor"
	"godoe/ports"

	"github.com/montanaflynn/stats"
)

// TrajectorySummary describes how the best weighted response evolved.
type TrajectorySummary struct {
	Count  int     `json:"count"`
	First  float64 `json:"first"`
	Last   float64 `json:"last"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
}

// SummarizeTrajectory summarises the best values recorded per iteration.
// Iterations without a best value are skipped; ok is false when none has one.
func SummarizeTrajectory(its []ports.IterationRecord) (TrajectorySummary, bool) {
	var values stats.Float64Data
	for _, it := range its {
		if it.Best != nil {
			values = append(values, *it.Best)
		}
	}
	if len(values) == 0 {
		return TrajectorySummary{}, false
	}
	sum := TrajectorySummary{Count: len(values), First: values[0], Last: values[len(values)-1]}
	sum.Min, _ = values.Min()
	sum.Max, _ = values.Max()
	sum.Median, _ = values.Median()
	sum.P90, _ = values.Percentile(90)
	return sum, true
}

// Report renders a campaign as markdown.
func (s *CampaignService) Report(ctx context.Context, id core.CampaignID) (string, error) {
	info, err := s.Campaign(ctx, id)
	if err != nil {
		return "", err
	}
	its, err := s.ledgerPort.ListIterations(ctx, id)
	if err != nil {
		return "", err
	}
	return RenderReport(info, its), nil
}

// RenderReport builds the markdown report for a campaign and its iterations.
func RenderReport(info *CampaignInfo, its []ports.IterationRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Campaign %s\n\n", info.Name)
	fmt.Fprintf(&b, "- ID: `%s`\n", info.ID)
	fmt.Fprintf(&b, "- Design: %s\n", info.DesignType)
	fmt.Fprintf(&b, "- Phase: %s\n", info.Phase)
	fmt.Fprintf(&b, "- Iterations: %d\n\n", len(its))

	b.WriteString("## Factors\n\n")
	writeStateTable(&b, info.Factors)

	b.WriteString("\n## Best experiment\n\n")
	if info.Best == nil {
		b.WriteString("No experiment evaluated yet.\n")
	} else {
		fmt.Fprintf(&b, "Weighted response: %g\n\n", info.Best.WeightedResponse)
		b.WriteString("| Setting | Value |\n|---|---|\n")
		for _, name := range sortedKeys(info.Best.OptimalSettings.Numeric) {
			fmt.Fprintf(&b, "| %s | %g |\n", name, info.Best.OptimalSettings.Numeric[name])
		}
		for _, name := range sortedKeys(info.Best.OptimalSettings.Labels) {
			fmt.Fprintf(&b, "| %s | %s |\n", name, info.Best.OptimalSettings.Labels[name])
		}
		for _, name := range sortedKeys(info.Best.OptimalResponse) {
			fmt.Fprintf(&b, "| %s (response) | %g |\n", name, info.Best.OptimalResponse[name])
		}
	}

	if len(its) > 0 {
		b.WriteString("\n## Iterations\n\n| # | Phase | Best | Converged | Design |\n|---|---|---|---|---|\n")
		for _, it := range its {
			best := "-"
			if it.Best != nil {
				best = fmt.Sprintf("%g", *it.Best)
			}
			hash := it.DesignHash
			if len(hash) > 12 {
				hash = hash[:12]
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %t | `%s` |\n", it.Seq, it.Phase, best, it.Converged, hash)
		}
	}

	if sum, ok := SummarizeTrajectory(its); ok {
		b.WriteString("\n## Best response trajectory\n\n")
		fmt.Fprintf(&b, "From %g to %g over %d iterations (min %g, median %g, p90 %g, max %g).\n",
			sum.First, sum.Last, sum.Count, sum.Min, sum.Median, sum.P90, sum.Max)
	}
	return b.String()
}

func writeStateTable(b *strings.Builder, t factor.StateTable) {
	b.WriteString("| |")
	for _, f := range t.Factors {
		fmt.Fprintf(b, " %s |", f)
	}
	b.WriteString("\n|---|")
	for range t.Factors {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, row := range factor.StateRows {
		fmt.Fprintf(b, "| %s |", row)
		for _, f := range t.Factors {
			fmt.Fprintf(b, " %s |", t.Cell(row, f))
		}
		b.WriteString("\n")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
