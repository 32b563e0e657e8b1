// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"time"
)

func runTraces(args Args, env *Env) error {
	if env.Traces == nil {
		return &CommandError{
			Command: "traces",
			Action:  "read",
			Reason:  "tracing is disabled (telemetry.traces_enabled = false)",
		}
	}
	spans, err := env.Traces.Recent(args.Limit)
	if err != nil {
		return err
	}
	stats, err := env.Traces.Stats()
	if err != nil {
		return err
	}

	return env.emit(args, TracesData{Spans: spans, Stats: stats}, func(w io.Writer) {
		if len(spans) == 0 {
			fmt.Fprintln(w, DimStyle.Render("No requests recorded yet."))
			return
		}
		fmt.Fprintln(w, SectionStyle.Render(fmt.Sprintf("Last %d requests", len(spans))))
		rows := make([][]cell, len(spans))
		for i, s := range spans {
			status := styled("ok", SuccessStyle)
			if !s.OK {
				status = styled("failed", ErrorStyle)
			}
			dur := time.Duration(s.DurationMS * float64(time.Millisecond)).Round(time.Millisecond)
			rows[i] = []cell{plain(s.Started().Local().Format("02 Jan 15:04:05")), plain(s.Name), plain(dur.String()), status, plain(s.Error)}
		}
		renderTable(w, []column{{"Started", 15}, {"Operation", 22}, {"Took", 9}, {"Status", 6}, {"Error", 30}}, rows)

		fmt.Fprintln(w, SectionStyle.Render("Per operation"))
		srows := make([][]cell, len(stats))
		for i, st := range stats {
			srows[i] = []cell{
				plain(st.Name),
				plain(fmt.Sprint(st.Count)),
				plain(fmt.Sprint(st.Failures)),
				plain(st.Avg.Round(time.Millisecond).String()),
				plain(st.P95.Round(time.Millisecond).String()),
			}
		}
		renderTable(w, []column{{"Operation", 22}, {"Calls", 6}, {"Failed", 6}, {"Avg", 9}, {"p95", 9}}, srows)
	})
}
