package inventory

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestRawDocumentPrefersCNPJ(t *testing.T) {
	d := Device{Location: Location{CNPJ: strPtr("25.729.197/0001-36"), CPF: strPtr("529.982.247-25")}}
	if got := d.RawDocument(); got != "25.729.197/0001-36" {
		t.Errorf("RawDocument = %q", got)
	}

	d = Device{Location: Location{CPF: strPtr("529.982.247-25")}}
	if got := d.RawDocument(); got != "529.982.247-25" {
		t.Errorf("RawDocument = %q", got)
	}

	d = Device{}
	if got := d.RawDocument(); got != "" {
		t.Errorf("RawDocument on empty location = %q", got)
	}
}

func TestActive(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{"online", true},
		{"Online", true},
		{"countManual", true},
		{"offline", false},
		{"inDealer", false},
		{"unknown", false},
		{"", false},
	}
	for _, tt := range tests {
		d := Device{Status: tt.status}
		if d.Active() != tt.want {
			t.Errorf("Active with status %q = %v, want %v", tt.status, d.Active(), tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		manuf, model, want string
	}{
		{"HP", "LaserJet M404", "HP LaserJet M404"},
		{"", "LaserJet M404", "LaserJet M404"},
		{"HP", "", "HP"},
		{"", "", "Sem nome"},
		{"  ", "  ", "Sem nome"},
	}
	for _, tt := range tests {
		d := Device{Manufacturer: tt.manuf, Model: tt.model}
		if got := d.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%q, %q) = %q, want %q", tt.manuf, tt.model, got, tt.want)
		}
	}
}

func TestCounterTotal(t *testing.T) {
	n := int64(42)
	m := int64(7)

	c := Counter{TotalCount: &n, Count: &m}
	if got, ok := c.Total(); !ok || got != 42 {
		t.Errorf("Total = %d, %v; totalCount should win", got, ok)
	}

	c = Counter{Count: &m}
	if got, ok := c.Total(); !ok || got != 7 {
		t.Errorf("Total = %d, %v; count should be used as fallback", got, ok)
	}

	c = Counter{}
	if _, ok := c.Total(); ok {
		t.Error("counter without any total should report not ok")
	}
}

func TestLevelDescriptionUnmarshal(t *testing.T) {
	var s Supply
	if err := json.Unmarshal([]byte(`{"type":"Toner","color":"black","level":{"description":"80%"}}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.Level.Description.String() != "80%" {
		t.Errorf("single string description = %q", s.Level.Description.String())
	}

	if err := json.Unmarshal([]byte(`{"level":{"description":["Baixo","20%"]}}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.Level.Description.String() != "Baixo, 20%" {
		t.Errorf("list description = %q", s.Level.Description.String())
	}

	if err := json.Unmarshal([]byte(`{"level":{"description":null}}`), &s); err != nil {
		t.Fatal(err)
	}
	if s.Level.Description.String() != "-" {
		t.Errorf("null description = %q, want -", s.Level.Description.String())
	}
}
