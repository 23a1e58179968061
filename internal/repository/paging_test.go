package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPage(t *testing.T) {
	cases := []struct {
		name     string
		page     int
		size     int
		wantPage int
		wantSize int
	}{
		{"valid passthrough", 3, 50, 3, 50},
		{"zero page floors", 0, 20, 1, 20},
		{"negative page floors", -5, 20, 1, 20},
		{"zero size defaults", 1, 0, 1, 20},
		{"negative size defaults", 1, -1, 1, 20},
		{"size at cap", 1, 100, 1, 100},
		{"size over cap clamped", 1, 101, 1, 100},
		{"huge size clamped", 2, 100000, 2, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, size := ClampPage(tc.page, tc.size)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantSize, size)
		})
	}
}
