// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "testing"

func TestRoomRequestRef(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"1a2b3c4d5e", "REQ-1A2B3C"},
		{"abc", "REQ-ABC"},
		{"", "REQ-"},
		{"XYZ999", "REQ-XYZ999"},
	}
	for _, tt := range tests {
		r := RoomRequest{ID: tt.id}
		if got := r.Ref(); got != tt.want {
			t.Errorf("Ref(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestRoomRequestNights(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"one week", "2026-03-01", "2026-03-08", 7},
		{"single night", "2026-03-01", "2026-03-02", 1},
		{"same day", "2026-03-01", "2026-03-01", 0},
		{"inverted range", "2026-03-08", "2026-03-01", 0},
		{"bad start", "yesterday", "2026-03-01", 0},
		{"bad end", "2026-03-01", "", 0},
		{"across month boundary", "2026-01-30", "2026-02-02", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RoomRequest{StayStart: tt.start, StayEnd: tt.end}
			if got := r.Nights(); got != tt.want {
				t.Errorf("Nights() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRoomRequestCapacity(t *testing.T) {
	tests := []struct {
		single, double int
		want           int
	}{
		{0, 0, 0},
		{3, 0, 3},
		{0, 2, 4},
		{2, 3, 8},
	}
	for _, tt := range tests {
		r := RoomRequest{SingleRooms: tt.single, DoubleRooms: tt.double}
		if got := r.Capacity(); got != tt.want {
			t.Errorf("Capacity(%d single, %d double) = %d, want %d", tt.single, tt.double, got, tt.want)
		}
	}
}
