package analysis

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/walkguardian/guardian-server-go/internal/errors"
)

// Result is the parsed verdict of one risk analysis call.
type Result struct {
	DangerLevel       int    `json:"danger_level"`
	DangerType        string `json:"danger_type"`
	Summary           string `json:"summary"`
	RecommendedAction string `json:"recommended_action"`
}

// The backend replies in free text; each field is extracted from a labeled
// line. Matching is case-insensitive and tolerant of surrounding prose and
// field order, but every label must be present.
var (
	dangerLevelRe = regexp.MustCompile(`(?i)danger_level:\s*(\d+)`)
	dangerTypeRe  = regexp.MustCompile(`(?i)danger_type:\s*(.+)`)
	summaryRe     = regexp.MustCompile(`(?i)summary:\s*(.+)`)
	recommendedRe = regexp.MustCompile(`(?i)recommended_action:\s*(.+)`)
)

// Parse extracts a Result from the risk backend's raw reply. Any absent label
// or non-integer danger_level is a hard failure, never a defaulted field.
func Parse(raw string) (Result, error) {
	levelMatch := dangerLevelRe.FindStringSubmatch(raw)
	if levelMatch == nil {
		return Result{}, apperrors.MalformedAnalysis("danger_level missing or not an integer")
	}
	level, err := strconv.Atoi(levelMatch[1])
	if err != nil {
		return Result{}, apperrors.MalformedAnalysis("danger_level missing or not an integer")
	}

	dangerType, ok := extract(dangerTypeRe, raw)
	if !ok {
		return Result{}, apperrors.MalformedAnalysis("danger_type missing")
	}
	summary, ok := extract(summaryRe, raw)
	if !ok {
		return Result{}, apperrors.MalformedAnalysis("summary missing")
	}
	recommended, ok := extract(recommendedRe, raw)
	if !ok {
		return Result{}, apperrors.MalformedAnalysis("recommended_action missing")
	}

	return Result{
		DangerLevel:       level,
		DangerType:        dangerType,
		Summary:           summary,
		RecommendedAction: recommended,
	}, nil
}

func extract(re *regexp.Regexp, raw string) (string, bool) {
	match := re.FindStringSubmatch(raw)
	if match == nil {
		return "", false
	}
	value := strings.TrimSpace(match[1])
	if value == "" {
		return "", false
	}
	return value, true
}
