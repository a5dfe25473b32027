package validation

import "testing"

type sampleRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Slug  string `json:"slug" validate:"required,slug"`
	Year  int    `json:"year" validate:"gt=0"`
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	fields := v.Validate(&sampleRequest{Email: "not-an-email", Slug: "Bad Slug"})
	for _, want := range []string{"name", "email", "slug", "year"} {
		if _, ok := fields[want]; !ok {
			t.Errorf("expected error for %q, got %v", want, fields)
		}
	}

	if fields := v.Validate(&sampleRequest{Name: "a", Email: "a@b.co", Slug: "osh-state", Year: 1}); fields != nil {
		t.Errorf("expected valid request, got %v", fields)
	}
}

func TestGenerateSlug(t *testing.T) {
	tests := map[string]string{
		"Kyrgyz State Medical University": "kyrgyz-state-medical-university",
		"  Osh -- State!! ":               "osh-state",
		"MBBS 2025: A Guide":              "mbbs-2025-a-guide",
	}
	for in, want := range tests {
		if got := GenerateSlug(in); got != want {
			t.Errorf("GenerateSlug(%q) = %q, want %q", in, got, want)
		}
		if !SlugRegex.MatchString(GenerateSlug(in)) {
			t.Errorf("GenerateSlug(%q) produced an invalid slug", in)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00 world \n"); got != "hello world" {
		t.Errorf("SanitizeString = %q", got)
	}
}
