package validation_test

import (
	"errors"
	"testing"

	"hotel_recommender/internal/domain"
	"hotel_recommender/internal/validation"
)

func TestStruct_Preference(t *testing.T) {
	month := 13
	budget := -5.0
	trip := "honeymoon"
	err := validation.Struct(domain.UserPreference{ArrivalMonth: &month, Budget: &budget, TripType: &trip})
	if !errors.Is(err, domain.ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *validation.Error, got %T", err)
	}
	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Field] = f.Rule
	}
	want := map[string]string{"arrival_month": "lte", "budget": "gte", "trip_type": "oneof"}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("field %s: got rule %q, want %q (all: %v)", k, got[k], v, got)
		}
	}
}

func TestStruct_EmptyPreferenceIsValid(t *testing.T) {
	if err := validation.Struct(domain.UserPreference{}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
