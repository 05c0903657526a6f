package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("native and english names", func(t *testing.T) {
		got := Resolve("es")
		if got.Name != "español" || got.English != "Spanish" {
			t.Fatalf("unexpected result: %#v", got)
		}
		if got.Flag != "\U0001F1EA\U0001F1F8" {
			t.Fatalf("Flag = %q, want ES flag", got.Flag)
		}
	})

	t.Run("normalized variant", func(t *testing.T) {
		got := Resolve("pt_br")
		if got.English != "Brazilian Portuguese" || got.Flag != "\U0001F1E7\U0001F1F7" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("unknown passthrough", func(t *testing.T) {
		got := Resolve("not a tag")
		if got.Name != "not a tag" || got.English != "not a tag" || got.Flag != "" {
			t.Fatalf("unexpected unknown result: %#v", got)
		}
	})
}

func TestFlag(t *testing.T) {
	if got := Flag("de"); got != "\U0001F1E9\U0001F1EA" {
		t.Fatalf("Flag(de) = %q", got)
	}
	for _, bad := range []string{"", "D", "419", "D1"} {
		if got := Flag(bad); got != "" {
			t.Fatalf("Flag(%q) = %q, want empty", bad, got)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := Label("de"); got != "Deutsch (German)" {
		t.Fatalf("Label(de) = %q", got)
	}
}
