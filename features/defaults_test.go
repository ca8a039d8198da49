package features

import (
	"testing"
	"time"

	"priceflow/config"
	"priceflow/internal/frame"
)

func TestFillDefaultsCreatesColumns(t *testing.T) {
	d := config.Default().Pipeline.Defaults
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	f := frame.New(1)
	out := FillDefaults(f, d, now)

	if v, _ := out.Column("start_time").StringAt(0); v != "2024-05-01T12:00:00Z" {
		t.Errorf("start_time = %q", v)
	}
	if v, _ := out.Column("end_time").StringAt(0); v != "2024-05-02T12:00:00Z" {
		t.Errorf("end_time = %q", v)
	}
	if v, _ := out.Column("listing_type").StringAt(0); v != "Auction" {
		t.Errorf("listing_type = %q", v)
	}
	if v, _ := out.Column("currency").StringAt(0); v != "USD" {
		t.Errorf("currency = %q", v)
	}
	if v, _ := out.Column("shipping_cost").FloatAt(0); v != 0 {
		t.Errorf("shipping_cost = %v", v)
	}
	if v, _ := out.Column("watchers").IntAt(0); v != 0 {
		t.Errorf("watchers = %v", v)
	}
	if v, _ := out.Column("seller_positive_percent").FloatAt(0); v != 100.0 {
		t.Errorf("seller_positive_percent = %v", v)
	}
}

func TestFillDefaultsNeverOverwrites(t *testing.T) {
	d := config.Default().Pipeline.Defaults
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	f := frame.New(2)
	f.SetColumn(stringColumn("listing_type", []*string{sp("FixedPrice"), nil}))
	f.SetColumn(floatColumn("shipping_cost", []*float64{fp(4.99), nil}))

	out := FillDefaults(f, d, now)

	if v, _ := out.Column("listing_type").StringAt(0); v != "FixedPrice" {
		t.Errorf("present listing_type overwritten: %q", v)
	}
	if v, _ := out.Column("listing_type").StringAt(1); v != "Auction" {
		t.Errorf("null listing_type not filled: %q", v)
	}
	if v, _ := out.Column("shipping_cost").FloatAt(0); v != 4.99 {
		t.Errorf("present shipping_cost overwritten: %v", v)
	}
	if v, _ := out.Column("shipping_cost").FloatAt(1); v != 0 {
		t.Errorf("null shipping_cost not filled: %v", v)
	}
}

func TestFillDefaultsGuaranteesPositiveDuration(t *testing.T) {
	cfg := config.Default()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	f := FillDefaults(frame.New(1), cfg.Pipeline.Defaults, now)
	out := Temporal(f)

	v, ok := out.Column("duration_hours").FloatAt(0)
	if !ok {
		t.Fatal("duration_hours should be derived from defaulted timestamps")
	}
	if v <= 0 {
		t.Fatalf("duration_hours = %v, want positive", v)
	}
	if v != 24.0 {
		t.Errorf("duration_hours = %v, want 24 from the default listing duration", v)
	}
}
