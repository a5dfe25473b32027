package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mathwaksu-byte/MathwaV2/database/dbtest"
	"github.com/mathwaksu-byte/MathwaV2/model"
	"gorm.io/gorm"
)

func newUniversity(t *testing.T, db *gorm.DB, slug string) model.University {
	t.Helper()
	u := model.University{Slug: slug, Name: "Test " + slug, IsActive: true}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create university: %v", err)
	}
	return u
}

func years(fees []model.Fee) []int {
	out := make([]int, len(fees))
	for i, f := range fees {
		out[i] = f.Year
	}
	return out
}

func TestValidateFees(t *testing.T) {
	tests := []struct {
		name   string
		fees    []FeeInput
		replace bool
		field   string
		wantOK  bool
	}{
		{name: "valid", fees: []FeeInput{{Year: 1, Tuition: 100}, {Year: 2}}, wantOK: true},
		{name: "missing", fees: nil, replace: true, field: "fees"},
		{name: "empty merge", fees: []FeeInput{}, field: "fees"},
		{name: "empty replace", fees: []FeeInput{}, replace: true, wantOK: true},
		{name: "zero year", fees: []FeeInput{{Year: 0}}, field: "fees[0].year"},
		{name: "duplicate year", fees: []FeeInput{{Year: 1}, {Year: 1}}, field: "fees[1].year"},
		{name: "negative hostel", fees: []FeeInput{{Year: 1, Hostel: -1}}, field: "fees[0].hostel"},
		{name: "bad currency", fees: []FeeInput{{Year: 1, Currency: "RUPEE"}}, field: "fees[0].currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFees(tt.fees, tt.replace)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("ValidateFees() = %v", err)
				}
				return
			}
			var verr *FeeValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateFees() = %v, want *FeeValidationError", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want key %q", verr.Fields, tt.field)
			}
		})
	}
}

func TestFeeUpsertMergesWithoutReplace(t *testing.T) {
	db := dbtest.New(t)
	svc := NewFeeService(db)
	u := newUniversity(t, db, "merge-u")
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, u.ID, []FeeInput{{Year: 1, Tuition: 100}, {Year: 2, Tuition: 200}}, false); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	fees, err := svc.Upsert(ctx, u.ID, []FeeInput{{Year: 2, Tuition: 250, Currency: "usd"}, {Year: 3, Tuition: 300}}, false)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if got := years(fees); len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("years = %v, want [1 2 3]", got)
	}
	if fees[1].Tuition != 250 || fees[1].Currency != "USD" {
		t.Errorf("year 2 = %+v, want tuition 250 USD", fees[1])
	}
	if fees[0].Currency != "INR" {
		t.Errorf("default currency = %q, want INR", fees[0].Currency)
	}
}

func TestFeeUpsertReplaceLeavesExactSet(t *testing.T) {
	db := dbtest.New(t)
	svc := NewFeeService(db)
	u := newUniversity(t, db, "replace-u")
	other := newUniversity(t, db, "other-u")
	ctx := context.Background()

	for _, id := range []string{u.ID, other.ID} {
		seed := []FeeInput{{Year: 1}, {Year: 2}, {Year: 3}, {Year: 4}, {Year: 5}, {Year: 6}}
		if _, err := svc.Upsert(ctx, id, seed, false); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	for i := 0; i < 2; i++ {
		fees, err := svc.Upsert(ctx, u.ID, []FeeInput{{Year: 5, Tuition: 5}, {Year: 2, Tuition: 2}}, true)
		if err != nil {
			t.Fatalf("replace #%d: %v", i, err)
		}
		if got := years(fees); len(got) != 2 || got[0] != 2 || got[1] != 5 {
			t.Fatalf("replace #%d years = %v, want [2 5]", i, got)
		}
	}

	cleared, err := svc.Upsert(ctx, u.ID, []FeeInput{}, true)
	if err != nil {
		t.Fatalf("replace with empty schedule: %v", err)
	}
	if cleared == nil || len(cleared) != 0 {
		t.Fatalf("cleared fees = %v, want empty list", years(cleared))
	}

	rest, err := svc.List(ctx, other.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rest) != 6 {
		t.Errorf("other university has %d fees, want 6 untouched", len(rest))
	}
}

func TestFeeUpsertInvalidWritesNothing(t *testing.T) {
	db := dbtest.New(t)
	svc := NewFeeService(db)
	u := newUniversity(t, db, "invalid-u")
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, u.ID, []FeeInput{{Year: 1, Tuition: 1}}, false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Upsert(ctx, u.ID, []FeeInput{{Year: 2, Tuition: -5}}, true); err == nil {
		t.Fatal("expected validation error")
	}

	fees, _ := svc.List(ctx, u.ID)
	if len(fees) != 1 || fees[0].Year != 1 {
		t.Fatalf("fees after rejected replace = %v, want the original year 1", years(fees))
	}
}

func TestFeeDeleteYearAndAll(t *testing.T) {
	db := dbtest.New(t)
	svc := NewFeeService(db)
	u := newUniversity(t, db, "delete-u")
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, u.ID, []FeeInput{{Year: 1}, {Year: 2}, {Year: 3}}, false); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.DeleteYear(ctx, u.ID, 2); err != nil {
		t.Fatalf("DeleteYear: %v", err)
	}
	if err := svc.DeleteYear(ctx, u.ID, 2); !errors.Is(err, ErrFeeNotFound) {
		t.Fatalf("DeleteYear twice = %v, want ErrFeeNotFound", err)
	}

	n, err := svc.DeleteAll(ctx, u.ID)
	if err != nil || n != 2 {
		t.Fatalf("DeleteAll = %d, %v; want 2, nil", n, err)
	}
}
