package main

import (
	"context"
	"fmt"
	"time"

	"github.com/helloagents/reagent"
	"github.com/helloagents/reagent/toolchain"
)

type currentTimeInput struct {
	Timezone string `json:"timezone"`
}

// newCurrentTimeTool reports the time in an IANA timezone, UTC by default.
func newCurrentTimeTool(now func() time.Time) *toolchain.TypedTool[currentTimeInput] {
	spec := reagent.ToolSpec{
		Name:        "current_time",
		Description: "Get the current date and time.",
		Parameters: []reagent.Param{
			{
				Name:        "timezone",
				Type:        reagent.ParamString,
				Description: "IANA timezone such as Asia/Tokyo. Defaults to UTC.",
			},
		},
	}

	return toolchain.NewTypedTool(spec, func(_ context.Context, in currentTimeInput) (string, error) {
		tz := in.Timezone
		if tz == "" {
			tz = "UTC"
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return "", fmt.Errorf("unknown timezone %q", tz)
		}
		return now().In(loc).Format("Monday, 2006-01-02 15:04:05 MST"), nil
	})
}
