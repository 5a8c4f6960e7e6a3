package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_Render(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableWithWriter(&buf, []string{"repository", "kind"})
	table.AddRow([]string{"octo/api", "commits"})
	table.AddRows([][]string{{"octo/web", "issues"}})
	table.Render()

	out := buf.String()
	for _, want := range []string{"REPOSITORY", "octo/api", "commits", "octo/web", "issues"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}
