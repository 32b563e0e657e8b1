// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func TestToast_Text(t *testing.T) {
	tests := []struct {
		title, detail, want string
	}{
		{"Module created successfully", "", "Module created successfully"},
		{"Failed to create module", "Name taken", "Failed to create module: Name taken"},
		{"Same", "Same", "Same"},
	}
	for _, tc := range tests {
		got := Toast{Title: tc.title, Detail: tc.detail}.Text()
		if got != tc.want {
			t.Errorf("Text() = %q, want %q", got, tc.want)
		}
	}
}

func TestToastManager_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewToastManager()
	m.now = func() time.Time { return now }

	m.Success("saved")
	m.Error("failed", "detail")

	now = now.Add(DefaultToastDuration)
	left := m.Tick()
	if len(left) != 1 || left[0].Title != "failed" {
		t.Fatalf("after 3s: %+v, want only the error toast", left)
	}

	now = now.Add(ErrorToastDuration)
	if m.Tick(); m.HasToasts() {
		t.Error("error toast should expire too")
	}
}

func TestToastManager_NewestFirstAndCapped(t *testing.T) {
	m := NewToastManager()
	for i := 0; i < maxToasts+2; i++ {
		m.Add(ToastInfo, string(rune('a'+i)), "")
	}
	toasts := m.Toasts()
	if len(toasts) != maxToasts {
		t.Fatalf("len = %d, want %d", len(toasts), maxToasts)
	}
	if toasts[0].Title != "f" {
		t.Errorf("newest toast = %q, want f", toasts[0].Title)
	}
}

func TestToastManager_Remove(t *testing.T) {
	m := NewToastManager()
	id := m.Success("x")
	m.Success("y")
	m.Remove(id)
	toasts := m.Toasts()
	if len(toasts) != 1 || toasts[0].Title != "y" {
		t.Errorf("Toasts() = %+v", toasts)
	}
}

func TestShowToast(t *testing.T) {
	msg := ShowToast(ToastError, "Failed to add credit", "")().(ToastMsg)
	if msg.Kind != ToastError || msg.Title != "Failed to add credit" {
		t.Errorf("msg = %+v", msg)
	}
}

func TestRenderToast(t *testing.T) {
	out := RenderToast(Toast{Kind: ToastSuccess, Title: "Credit added successfully"}, 80)
	if !strings.Contains(out, "Credit added successfully") {
		t.Errorf("RenderToast missing text:\n%s", out)
	}
}

func TestRenderToast_NarrowWrapsTitle(t *testing.T) {
	out := RenderToast(Toast{Kind: ToastSuccess, Title: "Credit added successfully", Detail: "Your balance is now $25.00"}, 40)
	for _, word := range []string{"Credit", "added", "successfully", "balance", "$25.00"} {
		if !strings.Contains(out, word) {
			t.Errorf("RenderToast dropped %q at width 40:\n%s", word, out)
		}
	}
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 40 {
			t.Errorf("line is %d columns wide, want <= 40: %q", w, line)
		}
	}
}
