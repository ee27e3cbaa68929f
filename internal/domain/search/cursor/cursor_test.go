package cursor

import (
	"errors"
	"math"
	"testing"

	"github.com/geodex-io/geodex/internal/domain"
	"github.com/geodex-io/geodex/internal/domain/search/mode"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		c    Cursor
	}{
		{"distance key", New(mode.Distance, 7.25, "listing-42")},
		{"blended key", New(mode.Blended, 0.731, "a")},
		{"zero key", New(mode.Relevance, 0, "z")},
		{"infinite key", New(mode.Quality, math.Inf(1), "far-away")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.c.Encode())
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.Sort() != tt.c.Sort() || got.ID() != tt.c.ID() {
				t.Errorf("got (%q, %q), want (%q, %q)", got.Sort(), got.ID(), tt.c.Sort(), tt.c.ID())
			}
			if got.SortKey() != tt.c.SortKey() && !(math.IsInf(got.SortKey(), 1) && math.IsInf(tt.c.SortKey(), 1)) {
				t.Errorf("SortKey() = %v, want %v", got.SortKey(), tt.c.SortKey())
			}
		})
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "%%%"},
		{"not json", "bm90LWpzb24"},
		{"unknown sort", New("", 0, "x").Encode()},
		{"missing id", New(mode.Distance, 0, "").Encode()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.token)
			if !errors.Is(err, domain.ErrInvalidCursor) {
				t.Fatalf("err = %v, want ErrInvalidCursor", err)
			}
		})
	}
}
