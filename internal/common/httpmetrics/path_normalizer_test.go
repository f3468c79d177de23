package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "/"},
		{"root", "/", "/"},
		{"static route", "/tags", "/tags"},
		{"uuid", "/posts/0b7e0c2e-8f43-4c55-9a0f-3c3c8f1f2a10", "/posts/{param}"},
		{"object id", "/comments/64b7f1e2a3c4d5e6f7a8b9c0", "/comments/{param}"},
		{"numeric", "/posts/42", "/posts/{param}"},
		{"upload", "/uploads/cat.png", "/uploads/{file}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizePath(tc.in); got != tc.want {
				t.Errorf("NormalizePath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
