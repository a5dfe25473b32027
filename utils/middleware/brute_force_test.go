package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mathwaksu-byte/MathwaV2/utils/middleware"
)

func TestLockoutFor(t *testing.T) {
	tests := []struct {
		attempts int64
		want     time.Duration
	}{
		{0, 0},
		{4, 0},
		{5, 2 * time.Minute},
		{9, 2 * time.Minute},
		{10, time.Hour},
		{24, time.Hour},
		{25, 24 * time.Hour},
		{100, 24 * time.Hour},
	}

	for _, tt := range tests {
		if got := middleware.LockoutFor(tt.attempts); got != tt.want {
			t.Errorf("LockoutFor(%d) = %s, want %s", tt.attempts, got, tt.want)
		}
	}
}

func TestBruteForceProtectionDisabledWithoutRedis(t *testing.T) {
	bf := middleware.NewBruteForceProtection(nil)
	if bf != nil {
		t.Fatalf("NewBruteForceProtection(nil) = %v, want nil", bf)
	}

	ctx := context.Background()
	bf.RecordFailedAttempt(ctx, "10.0.0.1", "a@b.co")
	if bf.IsEmailLocked(ctx, "a@b.co") {
		t.Error("email locked without Redis")
	}

	app := fiber.New()
	app.Post("/login", bf.CheckLockout(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want the handler to run", resp.StatusCode)
	}
}
