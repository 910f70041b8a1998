package ordering_test

import (
	"testing"

	"domainvar/internal/ordering"
	"domainvar/pkg/restricted"
	"domainvar/pkg/serrors"

	"github.com/stretchr/testify/require"
)

func TestParse_Sorting(t *testing.T) {
	tests := []struct {
		name  string
		order string
		seed  []string
		want  []string
	}{
		{
			name: "default is lexical",
			seed: []string{"b", "B", "a"},
			want: []string{"B", "a", "b"},
		},
		{
			name:  "reverse",
			order: ordering.Reverse,
			seed:  []string{"a", "c", "b"},
			want:  []string{"c", "b", "a"},
		},
		{
			name:  "numeric before words",
			order: ordering.Numeric,
			seed:  []string{"10", "x", "9", "-1.5", "apple"},
			want:  []string{"-1.5", "9", "10", "apple", "x"},
		},
		{
			name:  "numeric keeps distinct spellings",
			order: ordering.Numeric,
			seed:  []string{"1.0", "1"},
			want:  []string{"1", "1.0"},
		},
		{
			name:  "collation",
			order: "collate:de",
			seed:  []string{"Zebra", "äpfel", "apfel", "zoo"},
			want:  []string{"apfel", "äpfel", "Zebra", "zoo"},
		},
		{
			name:  "loose collation merges case and accents",
			order: "collate-loose:en",
			seed:  []string{"resume", "Résumé", "RESUME", "abc"},
			want:  []string{"abc", "resume"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := ordering.Parse(tt.order)
			require.NoError(t, err)

			d := restricted.NewWithOrder(order, tt.seed)
			require.Equal(t, tt.want, d.Values())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, name := range []string{"alphabetical", "collate:", "collate-loose:!!"} {
		t.Run(name, func(t *testing.T) {
			_, err := ordering.Parse(name)
			require.ErrorIs(t, err, serrors.ErrBadRequest)
		})
	}
}

func TestCanonical(t *testing.T) {
	require.Equal(t, ordering.Default, ordering.Canonical(""))
	require.Equal(t, "collate:fr", ordering.Canonical("collate:fr"))
}
