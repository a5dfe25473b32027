package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		url       string
		wantPage  int
		wantLimit int
	}{
		{"/", 1, 20},
		{"/?page=3&limit=10", 3, 10},
		{"/?page=0&limit=-5", 1, 20},
		{"/?page=abc&limit=xyz", 1, 20},
		{"/?limit=1000", 1, MaxLimit},
	}

	for _, tt := range tests {
		app := fiber.New()
		var got Page
		app.Get("/", func(c *fiber.Ctx) error {
			got = ParsePage(c, 20)
			return nil
		})

		if _, err := app.Test(httptest.NewRequest("GET", tt.url, nil)); err != nil {
			t.Fatalf("app.Test(%s): %v", tt.url, err)
		}
		if got.Page != tt.wantPage || got.Limit != tt.wantLimit {
			t.Errorf("%s: got page=%d limit=%d, want %d/%d", tt.url, got.Page, got.Limit, tt.wantPage, tt.wantLimit)
		}
	}

	if off := (Page{Page: 3, Limit: 20}).Offset(); off != 40 {
		t.Errorf("Offset() = %d, want 40", off)
	}
}

func TestParseBool(t *testing.T) {
	for _, raw := range []string{"true", "TRUE", "on", "1", "yes"} {
		if v, ok := ParseBool(raw); !v || !ok {
			t.Errorf("ParseBool(%q) = %v, %v", raw, v, ok)
		}
	}
	for _, raw := range []string{"false", "off", "0"} {
		if v, ok := ParseBool(raw); v || !ok {
			t.Errorf("ParseBool(%q) = %v, %v", raw, v, ok)
		}
	}
	if _, ok := ParseBool("maybe"); ok {
		t.Error("ParseBool(maybe) should not be ok")
	}
}

func TestLikePattern(t *testing.T) {
	if got := LikePattern(" Osh_50% "); got != `%osh\_50\%%` {
		t.Errorf("LikePattern = %q", got)
	}
}
