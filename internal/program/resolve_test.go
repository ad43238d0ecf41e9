// Tests for agent program resolution.
package program

import (
	"reflect"
	"testing"
)

// TestResolveSplitsQuotedArguments verifies shell quoting is honored.
func TestResolveSplitsQuotedArguments(t *testing.T) {
	got := Resolve("claude --flag 'a b'")
	if got.Path != "claude" {
		t.Fatalf("Path = %q, want %q", got.Path, "claude")
	}
	want := []string{"--flag", "a b"}
	if !reflect.DeepEqual(got.Args, want) {
		t.Fatalf("Args = %#v, want %#v", got.Args, want)
	}
}

// TestResolveFallsBackToShell covers every input that selects the fallback shell.
func TestResolveFallsBackToShell(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"custom",
		" custom ",
		"claude 'unterminated",
		`claude "still open`,
		`trailing\`,
	}
	for _, input := range cases {
		got := Resolve(input)
		if got.Path != FallbackShell {
			t.Fatalf("Resolve(%q).Path = %q, want %q", input, got.Path, FallbackShell)
		}
		if len(got.Args) != 0 {
			t.Fatalf("Resolve(%q).Args = %#v, want none", input, got.Args)
		}
		if !got.IsFallback() {
			t.Fatalf("Resolve(%q) should report fallback", input)
		}
	}
}

// TestResolveIsDeterministic verifies repeated resolution yields identical results.
func TestResolveIsDeterministic(t *testing.T) {
	inputs := []string{
		"claude",
		"codex exec --sandbox=workspace-write",
		`aider --message "fix the \"bug\"" --yes`,
		"custom",
		"",
	}
	for _, input := range inputs {
		first := Resolve(input)
		second := Resolve(input)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("Resolve(%q) not deterministic: %#v vs %#v", input, first, second)
		}
	}
}

// TestResolveEscapes verifies backslash escapes outside quotes.
func TestResolveEscapes(t *testing.T) {
	got := Resolve(`my\ agent --dir /tmp/x`)
	if got.Path != "my agent" {
		t.Fatalf("Path = %q, want %q", got.Path, "my agent")
	}
	if !reflect.DeepEqual(got.Args, []string{"--dir", "/tmp/x"}) {
		t.Fatalf("Args = %#v", got.Args)
	}
}

// TestProgramStringRoundTrips verifies the quoted rendering resolves back to the same program.
func TestProgramStringRoundTrips(t *testing.T) {
	original := Resolve("claude --flag 'a b'")
	rendered := original.String()
	if rendered != "claude --flag 'a b'" {
		t.Fatalf("String = %q", rendered)
	}
	if again := Resolve(rendered); !reflect.DeepEqual(again, original) {
		t.Fatalf("Resolve(String()) = %#v, want %#v", again, original)
	}
	if argv := original.Argv(); len(argv) != 3 || argv[0] != "claude" {
		t.Fatalf("Argv = %#v", argv)
	}
}
