package urlmatch

import "testing"

func mustCompile(t *testing.T, pattern string, typ Type) *Compiled {
	t.Helper()
	c, err := Compile(pattern, typ)
	if err != nil {
		t.Fatalf("Compile(%q, %s): %v", pattern, typ, err)
	}
	return c
}

func TestHostWildcard_DomainAndSubdomains(t *testing.T) {
	c := mustCompile(t, "*.example.com", TypeHostWildcard)

	for _, host := range []string{"example.com", "sub.example.com", "a.b.example.com", "EXAMPLE.COM"} {
		if !c.Match(host) {
			t.Errorf("*.example.com should match %q", host)
		}
	}
	for _, host := range []string{"notexample.com", "example.org", "example.com.evil.net"} {
		if c.Match(host) {
			t.Errorf("*.example.com should not match %q", host)
		}
	}
}

func TestHostWildcard_LeadingDot(t *testing.T) {
	c := mustCompile(t, ".example.com", TypeHostWildcard)
	if !c.Match("example.com") || !c.Match("sub.example.com") {
		t.Error(".example.com should match the domain and subdomains")
	}
}

func TestHostWildcard_SubdomainsOnly(t *testing.T) {
	c := mustCompile(t, "**.example.com", TypeHostWildcard)

	if c.Match("example.com") {
		t.Error("**.example.com must not match the bare domain")
	}
	if !c.Match("sub.example.com") || !c.Match("a.b.example.com") {
		t.Error("**.example.com should match subdomains")
	}
}

func TestHostWildcard_InnerStarSpansLabels(t *testing.T) {
	c := mustCompile(t, "example.*", TypeHostWildcard)

	for _, host := range []string{"example.com", "example.org", "example.co.uk"} {
		if !c.Match(host) {
			t.Errorf("example.* should match %q", host)
		}
	}
	if c.Match("example") {
		t.Error("inner star requires at least one character")
	}
	if c.Match("sub.example.com") {
		t.Error("example.* is anchored at the start")
	}
}

func TestHostWildcard_Literal(t *testing.T) {
	c := mustCompile(t, "example.com", TypeHostWildcard)
	if !c.Match("example.com") {
		t.Error("literal pattern should match itself")
	}
	if c.Match("sub.example.com") || c.Match("examplexcom") {
		t.Error("literal pattern dots are escaped and anchored")
	}
}

func TestURLWildcard(t *testing.T) {
	c := mustCompile(t, "*://example.com/*", TypeURLWildcard)

	for _, u := range []string{"https://example.com/", "http://example.com/path/to/page"} {
		if !c.Match(u) {
			t.Errorf("*://example.com/* should match %q", u)
		}
	}
	if c.Match("https://sub.example.com/") {
		t.Error("*://example.com/* should not match subdomains")
	}
}

func TestURLWildcard_StarMatchesEmpty(t *testing.T) {
	c := mustCompile(t, "https://example.com/*", TypeURLWildcard)
	if !c.Match("https://example.com/") {
		t.Error("url-wildcard star should match the empty run")
	}
}

func TestRegex_Verbatim(t *testing.T) {
	c := mustCompile(t, `^https://example\.(com|org)/`, TypeRegex)
	if !c.Match("https://example.org/page") {
		t.Error("regex should match")
	}
	if c.Match("https://example.net/page") {
		t.Error("regex should not match")
	}
	// Case-insensitive by contract.
	if !c.Match("HTTPS://EXAMPLE.COM/x") {
		t.Error("regex matching is case-insensitive")
	}
}

func TestCompile_Errors(t *testing.T) {
	cases := []struct {
		pattern string
		typ     Type
	}{
		{"", TypeHostWildcard},
		{"   ", TypeURLWildcard},
		{"[invalid", TypeRegex},
		{"x", Type("glob")},
	}
	for _, tc := range cases {
		if _, err := Compile(tc.pattern, tc.typ); err == nil {
			t.Errorf("Compile(%q, %s): expected error", tc.pattern, tc.typ)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		pattern string
		typ     Type
		wantErr bool
	}{
		{"", TypeHostWildcard, true},
		{"  \t ", TypeRegex, true},
		{"[invalid", TypeRegex, true},
		{"*.example.com", TypeHostWildcard, false},
		{"^valid$", TypeRegex, false},
		{"*://example.com/*", TypeURLWildcard, false},
		{"(((", TypeURLWildcard, false}, // wildcard dialects escape everything
	}
	for _, tc := range cases {
		msg := Validate(tc.pattern, tc.typ)
		if tc.wantErr && msg == "" {
			t.Errorf("Validate(%q, %s): expected message", tc.pattern, tc.typ)
		}
		if !tc.wantErr && msg != "" {
			t.Errorf("Validate(%q, %s): unexpected %q", tc.pattern, tc.typ, msg)
		}
	}
}

func TestMatchURL_HostExtraction(t *testing.T) {
	c := mustCompile(t, "*.example.com", TypeHostWildcard)

	if !c.MatchURL("https://sub.example.com/path?q=1") {
		t.Error("MatchURL should extract the host")
	}
	if c.MatchURL("https://example.org/") {
		t.Error("MatchURL should not match a foreign host")
	}
}

func TestHost(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://Example.COM/path", "example.com"},
		{"http://example.com:8080/", "example.com"},
		{"chrome://extensions", "extensions"},
		{"not a url at all", "not a url at all"}, // raw fallback
		{"https://bücher.example/", "xn--bcher-kva.example"},
	}
	for _, tc := range cases {
		if got := Host(tc.in); got != tc.want {
			t.Errorf("Host(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCached(t *testing.T) {
	a, err := Cached("*.example.com", TypeHostWildcard)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Cached("*.example.com", TypeHostWildcard)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("Cached should return the same compiled matcher")
	}

	if _, err := Cached("[bad", TypeRegex); err == nil {
		t.Error("Cached should surface compile errors")
	}
}
