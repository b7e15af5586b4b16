package overclock

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Guliveer/gpuwatch/internal/models"
)

// Labeled lines of "nvidia-smi -q -d POWER". Anchored at line start so
// "Power Limit" does not also match "Default Power Limit".
var (
	powerCurrentRe = regexp.MustCompile(`(?m)^\s*(?:Current\s+)?Power Limit\s*:\s*([\d.]+)\s*W`)
	powerDefaultRe = regexp.MustCompile(`(?m)^\s*Default Power Limit\s*:\s*([\d.]+)\s*W`)
	powerMinRe     = regexp.MustCompile(`(?m)^\s*Min Power Limit\s*:\s*([\d.]+)\s*W`)
	powerMaxRe     = regexp.MustCompile(`(?m)^\s*Max Power Limit\s*:\s*([\d.]+)\s*W`)
)

// ParsePowerLimits extracts the four power limits from nvidia-smi's power
// report. A missing or non-numeric line leaves only that field unavailable.
func ParsePowerLimits(text string) PowerLimits {
	return PowerLimits{
		Current: matchWatts(powerCurrentRe, text),
		Default: matchWatts(powerDefaultRe, text),
		Min:     matchWatts(powerMinRe, text),
		Max:     matchWatts(powerMaxRe, text),
	}
}

func matchWatts(re *regexp.Regexp, text string) models.Measure[float64] {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return models.Measure[float64]{}
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return models.Measure[float64]{}
	}
	return models.Of(v)
}

// offsetLimitPatterns returns the phrasings used by different
// nvidia-settings versions for an attribute's valid range, in the order
// they are tried.
func offsetLimitPatterns(attr string) []*regexp.Regexp {
	q := regexp.QuoteMeta(attr)
	return []*regexp.Regexp{
		regexp.MustCompile(`(?im)Valid\s+values\s+for\s+'` + q + `'\s+are\s+in\s+the\s+range\s+(-?\d+)\s+-\s+(-?\d+)`),
		regexp.MustCompile(`(?im)Valid\s+values\s+range\s+from\s+(-?\d+)\s+to\s+(-?\d+)`),
	}
}

// ParseOffsetLimits reads the min/max of attr from a non-terse
// nvidia-settings query. The first matching phrasing wins.
func ParseOffsetLimits(text, attr string) (lo, hi int, ok bool) {
	for _, re := range offsetLimitPatterns(attr) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		low, err1 := strconv.Atoi(m[1])
		high, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			continue
		}
		return low, high, true
	}
	return 0, 0, false
}

// parseOffsetCurrent parses the terse (-t) query output, a bare integer.
func parseOffsetCurrent(text string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(firstLine(text)))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
