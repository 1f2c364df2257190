package document_test

import (
	"strings"
	"testing"

	"github.com/ctxpack/ctxpack/internal/document"
	"github.com/ctxpack/ctxpack/internal/types"
)

func TestRenderTree(t *testing.T) {
	entries := []types.WalkEntry{
		{RelativePath: "cmd", Name: "cmd", Depth: 0, IsDir: true},
		{RelativePath: "cmd/main.go", Name: "main.go", Depth: 1},
		{RelativePath: "internal", Name: "internal", Depth: 0, IsDir: true},
		{RelativePath: "internal/app", Name: "app", Depth: 1, IsDir: true},
		{RelativePath: "internal/app/app.go", Name: "app.go", Depth: 2},
		{RelativePath: "internal/util.go", Name: "util.go", Depth: 1},
		{RelativePath: "README.md", Name: "README.md", Depth: 0},
	}

	expected := strings.Join([]string{
		"project/",
		"├── cmd/",
		"│   └── main.go",
		"├── internal/",
		"│   ├── app/",
		"│   │   └── app.go",
		"│   └── util.go",
		"└── README.md",
		"",
	}, "\n")

	rendered := document.RenderTree("project", entries)
	if rendered != expected {
		t.Fatalf("unexpected tree:\n%s\nexpected:\n%s", rendered, expected)
	}
}

func TestRenderTreeEmpty(t *testing.T) {
	rendered := document.RenderTree("project", nil)
	if rendered != "project/\n" {
		t.Fatalf("expected bare root line, got %q", rendered)
	}
}
