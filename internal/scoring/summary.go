package scoring

import (
	"fmt"
	"strings"
)

const (
	summarySkills = 3
	summaryGaps   = 2
)

// Summary builds the human-readable explanation: a strength statement for the label band,
// then the overlapping skills and, when present, the likely gaps.
func Summary(label Label, role string, skills, gaps []string) string {
	var strength string
	switch label {
	case LabelHigh:
		strength = fmt.Sprintf("Strong match: your %s background aligns well with this role.", role)
	case LabelMedium:
		strength = fmt.Sprintf("Decent match: your %s experience is relevant here.", strings.ToLower(role))
	default:
		strength = "Partial match: the role overlaps with some of your skills but may not be ideal."
	}

	detail := "Limited keyword overlap found in the job description."
	if len(skills) > 0 {
		detail = fmt.Sprintf("Key overlapping skills: %s.", strings.Join(truncate(skills, summarySkills), ", "))
	}

	if len(gaps) > 0 {
		detail += fmt.Sprintf(" Possible gaps: %s.", strings.Join(truncate(gaps, summaryGaps), ", "))
	}

	return strength + " " + detail
}
