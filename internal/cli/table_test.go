package cli

import (
	"strings"
	"testing"
)

func TestTableAddRow(t *testing.T) {
	table := NewTable([]string{"Name", "Age"})

	table.AddRow([]string{"Alice", "30"})
	table.AddRow([]string{"Bob"})
	table.AddRow([]string{"Charlie", "25", "Extra"})

	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}
	if len(table.rows[1]) != 2 || table.rows[1][1] != "" {
		t.Errorf("short row = %q, want padded to 2 columns", table.rows[1])
	}
	if len(table.rows[2]) != 2 {
		t.Errorf("long row = %q, want truncated to 2 columns", table.rows[2])
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"Name", "Age", "City"})
	table.AlignRight(1)
	table.AddRow([]string{"Alice", "30", "New York"})
	table.AddRow([]string{"Bob", "5", "LA"})

	output := table.Render()
	for _, want := range []string{"Name", "Age", "City", "Alice", "Bob", "New York", "LA"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if !strings.Contains(output, "  5 ") {
		t.Errorf("Age column not right aligned:\n%s", output)
	}
}

func TestTableWraps(t *testing.T) {
	table := NewTable([]string{"Detail"})
	table.SetColumnMaxWidth(0, 10)
	table.AddRow([]string{"the brand splash is a large png image"})

	for _, line := range strings.Split(table.Render(), "\n") {
		if len([]rune(line)) > 14 {
			t.Errorf("line %q exceeds the column width", line)
		}
	}
}

func TestTableEmpty(t *testing.T) {
	if out := NewTable(nil).Render(); out != "" {
		t.Errorf("Render() with no headers = %q, want empty", out)
	}
}
