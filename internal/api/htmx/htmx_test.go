package htmx

import (
	"net/http/httptest"
	"testing"
)

func TestIsRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{name: "absent", header: "", want: false},
		{name: "true", header: "true", want: true},
		{name: "mixed_case", header: "TRUE", want: true},
		{name: "false", header: "false", want: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin/dashboard", nil)
			if test.header != "" {
				req.Header.Set("HX-Request", test.header)
			}
			if got := IsRequest(req); got != test.want {
				t.Fatalf("IsRequest = %v, want %v", got, test.want)
			}
		})
	}
}
