package service

import (
	"math"

	"github.com/diligent-ai/diligent/internal/core"
)

// Dispersion thresholds for classifying agreement, expressed in risk
// score standard deviation. A spread under 10 points means the backends
// essentially agree; past 30 they are telling different stories.
const (
	strongAgreementMaxStdDev   = 10.0
	moderateAgreementMaxStdDev = 20.0
	weakAgreementMaxStdDev     = 30.0

	// consensusPenaltyPerStdDev converts dispersion into a 0-100
	// consensus score: score = 100 - penalty*stddev, floored at 0.
	consensusPenaltyPerStdDev = 3.0
)

// Aggregator computes agreement metrics across the risk scores of the
// backends that succeeded. Failed backends are excluded before the math
// runs; they never drag the mean toward zero.
type Aggregator struct{}

// NewAggregator creates a consensus aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Aggregate computes consensus metrics over the given risk scores.
// An empty slice yields zeroed metrics with agreement "none".
func (a *Aggregator) Aggregate(scores []float64) core.ConsensusMetrics {
	if len(scores) == 0 {
		return core.ConsensusMetrics{Agreement: core.AgreementNone}
	}

	mean := meanOf(scores)
	stddev := popStdDev(scores, mean)

	consensus := int(math.Round(100 - consensusPenaltyPerStdDev*stddev))
	if consensus < 0 {
		consensus = 0
	}

	return core.ConsensusMetrics{
		MeanScore:      mean,
		StdDev:         stddev,
		ConsensusScore: consensus,
		Agreement:      classifyAgreement(stddev),
		BackendCount:   len(scores),
	}
}

func classifyAgreement(stddev float64) core.AgreementLevel {
	switch {
	case stddev < strongAgreementMaxStdDev:
		return core.AgreementStrong
	case stddev < moderateAgreementMaxStdDev:
		return core.AgreementModerate
	case stddev < weakAgreementMaxStdDev:
		return core.AgreementWeak
	default:
		return core.AgreementNone
	}
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// popStdDev is the population standard deviation: a single score has
// zero dispersion, which is the agreement we want to report for it.
func popStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
