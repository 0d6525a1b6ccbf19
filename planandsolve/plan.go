package planandsolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoPlan is returned when the planner's reply holds no usable plan.
var ErrNoPlan = errors.New("planner returned no plan")

var fencePattern = regexp.MustCompile("```(?i:json)?\\s*|\\s*```")

// ParsePlan extracts the step list from a planner reply. The reply may be a
// bare JSON array of strings or an object with a "plan" array, optionally
// wrapped in a ```json fence. Blank steps are dropped. Any error wraps
// ErrNoPlan.
func ParsePlan(text string) ([]string, error) {
	clean := strings.TrimSpace(fencePattern.ReplaceAllString(text, ""))
	if clean == "" {
		return nil, fmt.Errorf("%w: empty reply", ErrNoPlan)
	}

	var raw []string
	if strings.HasPrefix(clean, "[") {
		if err := json.Unmarshal([]byte(clean), &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoPlan, err)
		}
	} else {
		var obj struct {
			Plan []string `json:"plan"`
		}
		if err := json.Unmarshal([]byte(clean), &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoPlan, err)
		}
		raw = obj.Plan
	}

	plan := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			plan = append(plan, s)
		}
	}
	if len(plan) == 0 {
		return nil, fmt.Errorf("%w: plan is empty", ErrNoPlan)
	}
	return plan, nil
}
