package cdrwire

import "testing"

func TestPadding(t *testing.T) {
	tests := []struct {
		offset, width, want int
	}{
		{0, 4, 0},
		{1, 4, 3},
		{2, 4, 2},
		{3, 4, 1},
		{4, 4, 0},
		{0, 8, 0},
		{4, 8, 4},
		{5, 1, 0},
		{7, 2, 1},
	}
	for _, tc := range tests {
		if got := Padding(tc.offset, tc.width); got != tc.want {
			t.Errorf("Padding(%d, %d) = %d, want %d", tc.offset, tc.width, got, tc.want)
		}
	}
}

func TestAlign(t *testing.T) {
	tests := []struct {
		offset, width, want int
	}{
		{0, 4, 0},
		{1, 4, 4},
		{5, 8, 8},
		{9, 8, 16},
	}
	for _, tc := range tests {
		if got := Align(tc.offset, tc.width); got != tc.want {
			t.Errorf("Align(%d, %d) = %d, want %d", tc.offset, tc.width, got, tc.want)
		}
	}
}
