package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type label string

func (l label) Label() string { return string(l) }

func TestResolveLabel(t *testing.T) {
	candidates := []label{"Pune", "Mumbai City", "Mumbai Suburban", "Thane"}

	cases := []struct {
		query    string
		expected label
		ok       bool
	}{
		{query: "pune", expected: "Pune", ok: true},
		{query: "mumbai suburban", expected: "Mumbai Suburban", ok: true},
		{query: "suburban", expected: "Mumbai Suburban", ok: true},
		{query: "Thaen", expected: "Thane", ok: true},
		{query: "zzzzzz", ok: false},
		{query: "  ", ok: false},
	}
	for _, c := range cases {
		t.Run(c.query, func(t *testing.T) {
			got, ok := ResolveLabel(c.query, candidates, 0.8)
			require.Equal(t, c.ok, ok)
			if c.ok {
				require.Equal(t, c.expected, got)
			}
		})
	}
}

func TestNormalizeCaseNumber(t *testing.T) {
	require.Equal(t, "WPC122024", NormalizeCaseNumber("WP (C) 12/2024"))
	require.Equal(t, NormalizeCaseNumber("wp-c-12-2024"), NormalizeCaseNumber("WP (C) 12/2024"))
}
