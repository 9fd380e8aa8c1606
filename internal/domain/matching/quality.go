package matching

import "math"

type Quality string

const (
	QualityExcellent Quality = "excellent"
	QualityGood      Quality = "good"
	QualityMedium    Quality = "medium"
	QualityPoor      Quality = "poor"
)

const (
	// InclusionThreshold is the minimum score for a result to be persisted.
	InclusionThreshold = 0.3
	// NotifyThreshold is the minimum score that triggers a job_matched notification.
	NotifyThreshold = 0.6

	excellentCutoff = 0.8
	goodCutoff      = 0.6
	mediumCutoff    = 0.4
)

func QualityFor(score float64) Quality {
	switch {
	case score >= excellentCutoff:
		return QualityExcellent
	case score >= goodCutoff:
		return QualityGood
	case score >= mediumCutoff:
		return QualityMedium
	default:
		return QualityPoor
	}
}

func ParseQuality(s string) (Quality, bool) {
	switch Quality(s) {
	case QualityExcellent, QualityGood, QualityMedium, QualityPoor:
		return Quality(s), true
	}
	return "", false
}

func Percentage(score float64) int {
	return int(math.Round(Clamp01(score) * 100))
}

func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func Qualifies(score float64) bool { return score >= InclusionThreshold }

func ShouldNotify(score float64) bool { return score >= NotifyThreshold }
