package strings

import (
	"testing"

	kit "rowkeeper/internal/platform/testkit"
)

func TestIfEmpty(t *testing.T) {
	def := []string{"http://localhost:3000"}
	if got := IfEmpty(nil, def); len(got) != 1 || got[0] != def[0] {
		t.Fatalf("IfEmpty(nil) = %v", got)
	}
	in := []string{"https://rows.example"}
	if got := IfEmpty(in, def); got[0] != in[0] {
		t.Fatalf("IfEmpty(in) = %v", got)
	}
}

func TestMustString(t *testing.T) {
	if got := MustString(" rows ", "module name"); got != " rows " {
		t.Fatalf("MustString = %q", got)
	}
	kit.MustPanic(t, func() { _ = MustString("  ", "module name") })
}

func TestMustPrefix(t *testing.T) {
	cases := map[string]string{
		"rows":     "/rows",
		"/rows/":   "/rows",
		" /meta ":  "/meta",
		"//rows//": "/rows",
	}
	for in, want := range cases {
		if got := MustPrefix(in); got != want {
			t.Fatalf("MustPrefix(%q) = %q, want %q", in, got, want)
		}
	}
	kit.MustPanic(t, func() { _ = MustPrefix(" / ") })
}
