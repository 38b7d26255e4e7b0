package generate

import (
	"strings"
	"testing"
)

func TestBuildInstructionDeterministic(t *testing.T) {
	a := buildInstruction("a todo app")
	b := buildInstruction("a todo app")
	if a != b {
		t.Fatal("instruction must be byte-identical for identical prompts")
	}
}

func TestBuildInstructionContent(t *testing.T) {
	got := buildInstruction("a landing page")
	if !strings.Contains(got, "a landing page") {
		t.Fatalf("prompt missing from instruction: %q", got)
	}
	if !strings.Contains(got, `"files"`) {
		t.Fatalf("expected files shape requirement in instruction: %q", got)
	}
}
