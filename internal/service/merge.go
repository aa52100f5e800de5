package service

import (
	"sort"

	"github.com/diligent-ai/diligent/internal/core"
)

// MergeFindings combines findings from all backends into a single
// deterministically ordered list: severity rank ascending (critical
// first), then confidence descending. The sort is stable, so findings
// that tie on both keys keep their arrival order and repeated merges of
// the same input produce identical output. Near-duplicate findings from
// different backends are kept; corroboration is signal, not noise.
func MergeFindings(groups ...[]core.Finding) []core.Finding {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	if total == 0 {
		return []core.Finding{}
	}

	merged := make([]core.Finding, 0, total)
	for _, g := range groups {
		merged = append(merged, g...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		ri, rj := merged[i].Severity.Rank(), merged[j].Severity.Rank()
		if ri != rj {
			return ri < rj
		}
		return merged[i].Confidence > merged[j].Confidence
	})

	return merged
}
