package atelier

import (
	"regexp"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Golden Hour Tips!  ", "golden-hour-tips"},
		{"Café Élan", "cafe-elan"},
		{"Anna & Ben -- 2024", "anna-ben-2024"},
		{"Ünïcödé Wedding", "unicode-wedding"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateAccessCode(t *testing.T) {
	re := regexp.MustCompile(`^[0-9A-Z]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := GenerateAccessCode()
		if !re.MatchString(code) {
			t.Fatalf("code %q does not match %s", code, re)
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("only %d distinct codes out of 50", len(seen))
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://studio.example", nil, "https://studio.example"},
		{"https://studio.example", []string{"blog", "first-post"}, "https://studio.example/blog/first-post/"},
		{"https://studio.example/", []string{"about"}, "https://studio.example/about/"},
		{"https://studio.example/sub", []string{"stories"}, "https://studio.example/sub/stories/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestSplitKeywords(t *testing.T) {
	got := SplitKeywords(" wedding, ,film ,  portraits")
	want := []string{"wedding", "film", "portraits"}
	if len(got) != len(want) {
		t.Fatalf("SplitKeywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitKeywords[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
