package ui

import (
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestTable_Render(t *testing.T) {
	table := NewTable([]TableColumn{
		{Header: "#", Align: "right"},
		{Header: "Source"},
		{Header: "Scale", Align: "right"},
	})
	table.AddRow("1", "page-001.jpg", "0.421")
	table.AddRow("10", "a.png")

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[2], "page-001.jpg") || !strings.Contains(lines[3], "a.png") {
		t.Errorf("rows out of order:\n%s", out)
	}
}

func TestTable_RenderNoColumns(t *testing.T) {
	if NewTable(nil).Render() != "" {
		t.Error("expected empty output without columns")
	}
}
