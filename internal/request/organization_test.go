package request

import "testing"

func TestOrgSlugFromHost(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		base     string
		wantSlug string
		wantOK   bool
	}{
		{name: "subdomain", host: "blank-bil.glansen.no", base: "glansen.no", wantSlug: "blank-bil", wantOK: true},
		{name: "with_port", host: "blank-bil.localhost:8080", base: "localhost", wantSlug: "blank-bil", wantOK: true},
		{name: "uppercase", host: "Blank-Bil.Glansen.NO", base: "glansen.no", wantSlug: "blank-bil", wantOK: true},
		{name: "bare_domain", host: "glansen.no", base: "glansen.no", wantSlug: "", wantOK: true},
		{name: "nested", host: "a.b.glansen.no", base: "glansen.no", wantSlug: "", wantOK: true},
		{name: "foreign", host: "example.com", base: "glansen.no", wantOK: false},
		{name: "suffix_lookalike", host: "evilglansen.no", base: "glansen.no", wantOK: false},
		{name: "ip", host: "127.0.0.1:8080", base: "localhost", wantOK: false},
		{name: "empty_base", host: "a.localhost", base: "", wantOK: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			slug, ok := OrgSlugFromHost(test.host, test.base)
			if ok != test.wantOK || slug != test.wantSlug {
				t.Fatalf("OrgSlugFromHost(%q, %q) = %q, %t; want %q, %t", test.host, test.base, slug, ok, test.wantSlug, test.wantOK)
			}
		})
	}
}
