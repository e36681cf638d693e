package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKanban(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  K-100 ", "K-100"},
		{"uppercases", "k-100", "K-100"},
		{"strips float artifact", "251205.0", "251205"},
		{"keeps real decimal suffix", "REV1.0", "REV1.0"},
		{"keeps internal hyphens", "AB-12-34", "AB-12-34"},
		{"empty stays empty", "", ""},
		{"whitespace only is empty", "   ", ""},
		{"bare dot zero is kept", ".0", ".0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kanban(tt.in))
		})
	}
}

func TestLot(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing space", "251205 ", "251205"},
		{"float artifact", "251205.0", "251205"},
		{"plain", "251205", "251205"},
		{"internal hyphen removed", "2512-05", "251205"},
		{"internal space removed", "2512 05", "251205"},
		{"lowercase alpha lot", "lot9a", "LOT9A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lot(tt.in))
		})
	}
}

// Every upstream rendering of the same lot must collapse to one key, or
// catalog/ledger joins silently split.
func TestLotVariantsCollapse(t *testing.T) {
	variants := []string{"251205 ", "251205.0", "251205", " 2512-05"}
	for _, v := range variants {
		assert.Equal(t, "251205", Lot(v), "variant %q", v)
	}
}

func TestIdempotent(t *testing.T) {
	inputs := []string{"  k-1.0 ", "251205.0", "REV1.0", "", "a b-c"}
	for _, in := range inputs {
		assert.Equal(t, Kanban(in), Kanban(Kanban(in)))
		assert.Equal(t, Lot(in), Lot(Lot(in)))
	}
}
