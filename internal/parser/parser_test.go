package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/raphaelgruber/chainburst/internal/chain"
	"github.com/raphaelgruber/chainburst/internal/solver"
)

func TestReadChain_Valid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantN   int
		classes string
	}{
		{"empty chain", "0\n", 0, ""},
		{"empty chain without newline", "0", 0, ""},
		{"single item", "1\n5\nP\n", 1, "P"},
		{"one line", "3 2 3 4 PNA", 3, "PNA"},
		{"crlf and extra spacing", "3\r\n 2   3\t4 \r\nPNA\r\n", 3, "PNA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ReadChain(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadChain() error = %v", err)
			}
			if c.N() != tt.wantN {
				t.Errorf("N() = %d, want %d", c.N(), tt.wantN)
			}
			if c.Classes() != tt.classes {
				t.Errorf("Classes() = %q, want %q", c.Classes(), tt.classes)
			}
		})
	}
}

func TestReadChain_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"whitespace only", "  \n\t"},
		{"non-numeric count", "three\n1 2 3\nPNA\n"},
		{"negative count", "-2\n"},
		{"missing potentials", "3\n1 2\n"},
		{"non-numeric potential", "2\n1 x\nPN\n"},
		{"negative potential", "2\n1 -4\nPN\n"},
		{"missing classes", "2\n1 2\n"},
		{"short class string", "3\n1 2 3\nPN\n"},
		{"unknown class", "2\n1 2\nPZ\n"},
		{"trailing tokens", "1\n5\nP\nextra\n"},
		{"class for empty chain", "0\nP\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadChain(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("ReadChain() expected error, got nil")
			}
			if !errors.Is(err, chain.ErrInvalidInput) {
				t.Errorf("ReadChain() error = %v, want ErrInvalidInput", err)
			}
			if !IsInputError(err) {
				t.Errorf("IsInputError(%v) = false", err)
			}
		})
	}
}

func TestWriteResult(t *testing.T) {
	tests := []struct {
		name   string
		energy uint64
		order  []int
		want   string
	}{
		{"empty order", 0, nil, "0\n\n"},
		{"single", 10, []int{1}, "10\n1\n"},
		{"several", 563, []int{2, 4, 3, 5, 6, 1}, "563\n2 4 3 5 6 1\n"},
		{"max uint64", 18446744073709551615, []int{1}, "18446744073709551615\n1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteResult(&buf, tt.energy, tt.order); err != nil {
				t.Fatalf("WriteResult() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("WriteResult() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestEndToEnd_TextRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no items", "0\n", "0\n\n"},
		{"single P", "1\n5\nP\n", "10\n1\n"},
		{"uniform", "3\n1 1 1\nPPP\n", "6\n1 2 3\n"},
		{"mixed", "5\n10 1 7 3 8\nBANPA\n", "584\n2 3 4 5 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ReadChain(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadChain() error = %v", err)
			}
			res := solver.Solve(c, solver.TieBreakLast)

			var buf bytes.Buffer
			if err := WriteResult(&buf, res.Energy, res.Order); err != nil {
				t.Fatalf("WriteResult() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestLoadFixtures_Golden(t *testing.T) {
	fixtures, err := LoadFixtures("testdata/golden.yaml")
	if err != nil {
		t.Fatalf("LoadFixtures() error = %v", err)
	}
	if len(fixtures) == 0 {
		t.Fatal("LoadFixtures() returned no fixtures")
	}

	for _, f := range fixtures {
		t.Run(f.Name, func(t *testing.T) {
			if !f.HasExpectation() {
				t.Fatalf("fixture %q has no expected energy", f.Name)
			}
			c, err := f.Chain()
			if err != nil {
				t.Fatalf("Chain() error = %v", err)
			}
			tb, err := solver.ParseTieBreak(f.TieBreak)
			if err != nil {
				t.Fatalf("ParseTieBreak() error = %v", err)
			}

			res := solver.Solve(c, tb)
			if res.Energy != *f.Energy {
				t.Errorf("energy = %d, want %d", res.Energy, *f.Energy)
			}
			if FormatOrder(res.Order) != FormatOrder(f.Order) {
				t.Errorf("order = %v, want %v", res.Order, f.Order)
			}
		})
	}
}

func TestParseFixtures(t *testing.T) {
	data := []byte(`
- potentials: [1, 2]
  classes: PN
- name: named
  potentials: [3]
  classes: X
`)
	fixtures, err := ParseFixtures(data)
	if err != nil {
		t.Fatalf("ParseFixtures() error = %v", err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("got %d fixtures, want 2", len(fixtures))
	}
	if fixtures[0].Name != "fixture-1" {
		t.Errorf("default name = %q, want fixture-1", fixtures[0].Name)
	}
	if fixtures[0].HasExpectation() {
		t.Errorf("fixture without energy should have no expectation")
	}
	if _, err := fixtures[1].Chain(); !errors.Is(err, chain.ErrInvalidInput) {
		t.Errorf("Chain() error = %v, want ErrInvalidInput", err)
	}

	if _, err := ParseFixtures([]byte("not: [a, list")); !errors.Is(err, chain.ErrInvalidInput) {
		t.Errorf("ParseFixtures() on bad YAML error = %v, want ErrInvalidInput", err)
	}
}
