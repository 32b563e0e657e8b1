// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateLayout renders timestamps as day, short month, year and 24h time,
// e.g. "02 Jan 2006, 15:04".
const DateLayout = "02 Jan 2006, 15:04"

// Dated is implemented by every entity that appears in a list.
type Dated interface {
	CreatedAt() time.Time
}

// Timestamp is a point in time encoded as unix seconds on the wire. The
// backend sends integers, but fractional seconds and RFC 3339 strings are
// accepted too. null and missing values decode to the zero time.
type Timestamp struct {
	time.Time
}

// Unix builds a Timestamp from unix seconds.
func Unix(sec int64) Timestamp {
	return Timestamp{time.Unix(sec, 0)}
}

// MarshalJSON encodes the time as unix seconds (0 for the zero time).
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

// UnmarshalJSON decodes unix seconds, fractional seconds or an RFC 3339 string.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			t.Time = fromSeconds(n)
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("timestamp %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("timestamp %s: %w", data, err)
	}
	t.Time = fromSeconds(n)
	return nil
}

func fromSeconds(n float64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(n)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// Display formats the timestamp in the local zone using DateLayout, or ""
// for the zero time.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(DateLayout)
}
