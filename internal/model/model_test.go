// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TIMESTAMP TESTS
// =============================================================================

func TestTimestamp_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
		zero bool
	}{
		{name: "integer seconds", in: `1704067200`, want: 1704067200},
		{name: "fractional seconds", in: `1704067200.5`, want: 1704067200},
		{name: "quoted seconds", in: `"1704067200"`, want: 1704067200},
		{name: "rfc3339", in: `"2024-01-01T00:00:00Z"`, want: 1704067200},
		{name: "null", in: `null`, zero: true},
		{name: "empty string", in: `""`, zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			if tt.zero {
				assert.True(t, ts.IsZero())
				return
			}
			assert.Equal(t, tt.want, ts.Unix())
		})
	}
}

func TestTimestamp_UnmarshalRejectsGarbage(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`true`), &ts))
}

func TestTimestamp_MarshalRoundsToSeconds(t *testing.T) {
	data, err := json.Marshal(Unix(1704067200))
	require.NoError(t, err)
	assert.Equal(t, "1704067200", string(data))

	data, err = json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "0", string(data))
}

func TestTimestamp_Display(t *testing.T) {
	ts := Timestamp{time.Date(2024, time.March, 5, 14, 7, 0, 0, time.Local)}
	assert.Equal(t, "05 Mar 2024, 14:07", ts.Display())
	assert.Equal(t, "", Timestamp{}.Display())
}

// =============================================================================
// ENTITY TESTS
// =============================================================================

func TestTutor_DecodesWrappedAssistant(t *testing.T) {
	body := `[{"id":"t1","assistant":{"id":"asst_1","name":"Algebra","model":"gpt-3.5-turbo-1106","instructions":"Be patient","created_at":1704067200}}]`

	var tutors []Tutor
	require.NoError(t, json.Unmarshal([]byte(body), &tutors))
	require.Len(t, tutors, 1)

	tu := tutors[0]
	assert.Equal(t, "Algebra", tu.Name())
	assert.Equal(t, "gpt-3.5-turbo-1106", tu.Model())
	assert.Equal(t, "Be patient", tu.Instructions())
	assert.Equal(t, int64(1704067200), tu.CreatedAt().Unix(), "falls back to the assistant timestamp")
}

func TestTutor_PrefersOwnTimestamp(t *testing.T) {
	tu := Tutor{Created: Unix(200), Assistant: Assistant{Created: Unix(100)}}
	assert.Equal(t, int64(200), tu.CreatedAt().Unix())
}

func TestModule_TutorID(t *testing.T) {
	m := Module{AssistantID: "asst_a"}
	assert.Equal(t, "asst_a", m.TutorID())
	m.Assistant.ID = "asst_b"
	assert.Equal(t, "asst_b", m.TutorID())
}

func TestMessage_Text(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"id":"m1","role":"assistant","content":[{"type":"text","text":{"value":"Hello"}}],"created_at":1}`), &m))
	assert.Equal(t, "Hello", m.Text())

	assert.Equal(t, "", Message{}.Text())
	assert.Equal(t, "", Message{Content: []ContentBlock{{Type: "image_file"}}}.Text())
}

func TestRole_Author(t *testing.T) {
	assert.Equal(t, "You", RoleUser.Author("Calculus"))
	assert.Equal(t, "Calculus", RoleAssistant.Author("Calculus"))
}

func TestMessagePage_Chronological(t *testing.T) {
	page := MessagePage{Data: []Message{{ID: "3"}, {ID: "2"}, {ID: "1"}}}

	got := page.Chronological()
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.Equal(t, "3", page.Data[0].ID, "page must not be reordered in place")
}

func TestCreditSummary_SeriesExcludesTopUp(t *testing.T) {
	s := CreditSummary{"Top up": 50, "Chat": 3.5, "Assistant": 1.25}

	series := s.Series()
	require.Len(t, series, 2)
	assert.Equal(t, "Assistant", series[0].Name)
	assert.Equal(t, "Chat", series[1].Name)
	assert.InDelta(t, 4.75, s.TotalSpend(), 1e-9)
}

func TestCreditTransaction_SignedAmount(t *testing.T) {
	assert.Equal(t, 10.0, CreditTransaction{Type: TopUp, Amount: 10}.SignedAmount())
	assert.Equal(t, -2.0, CreditTransaction{Type: "Chat", Amount: 2}.SignedAmount())
}

// =============================================================================
// PAYLOAD TESTS
// =============================================================================

func TestTutorPayload_EncodesEmptyTools(t *testing.T) {
	data, err := json.Marshal(NewTutorPayload("Algebra", ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Algebra","instructions":"","tools":[]}`, string(data))
}

func TestNewMessagePayload(t *testing.T) {
	m := Module{
		ThreadID:  "thread_1",
		Assistant: Assistant{ID: "asst_1", Instructions: "Socratic"},
	}
	p := NewMessagePayload(m, "uid-1", "What is a derivative?")

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"assistant_id":"asst_1","thread_id":"thread_1","content":"What is a derivative?","user_id":"uid-1","instructions":"Socratic"}`, string(data))
}

func TestRegisterPayload_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada", RegisterPayload{FirstName: "Ada"}.DisplayName())
	assert.Equal(t, "Ada Lovelace", RegisterPayload{FirstName: "Ada", LastName: "Lovelace"}.DisplayName())
}
