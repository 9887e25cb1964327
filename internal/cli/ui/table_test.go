package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "TYPE", "BASE", "FACTS")
	table.AddRow("Base", "", "2")
	table.AddRow("Child", "Base", "3")
	table.AddRow("Short")
	table.Render()

	want := strings.Join([]string{
		"TYPE   BASE  FACTS",
		"─────  ────  ─────",
		"Base         2",
		"Child  Base  3",
		"Short        ",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("unexpected table:\n%q\nwant:\n%q", buf.String(), want)
	}
	if table.Len() != 3 {
		t.Errorf("Len() = %d", table.Len())
	}
}

func TestTableNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true)
	table.AddRow("x")
	table.Render()
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Name", "Child")
	kv.AddRow("Base", "Base")
	kv.AddRow("Subtype", "true")
	kv.Render()

	want := "Name:    Child\nBase:    Base\nSubtype: true\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestRenderTree(t *testing.T) {
	base := &TreeNode{Label: "Base", Detail: "root"}
	child := base.Add("Child", "")
	child.Add("GrandChild", "2 facts")
	base.Add("Other", "")

	var buf bytes.Buffer
	RenderTree(&buf, []*TreeNode{base, {Label: "Lone"}}, true)

	want := strings.Join([]string{
		"Base root",
		"├── Child",
		"│   └── GrandChild 2 facts",
		"└── Other",
		"Lone",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("unexpected tree:\n%s\nwant:\n%s", buf.String(), want)
	}
}
