package scoring

import (
	"testing"
	"time"
)

func TestNewVitals_Valid(t *testing.T) {
	v, err := NewVitals(1, 10, 37.0, 5, time.Now())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if v.Pain != 1 || v.WoundHealing != 10 || v.TemperatureC != 37.0 || v.Mobility != 5 {
		t.Fatalf("unexpected vitals: %+v", v)
	}
}

func TestNewVitals_OutOfRange(t *testing.T) {
	cases := []struct {
		name                         string
		pain, wound, tempC, mobility float64
	}{
		{"pain low", 0, 5, 37, 5},
		{"pain high", 11, 5, 37, 5},
		{"wound low", 5, 0.5, 37, 5},
		{"temperature low", 5, 5, 29.9, 5},
		{"temperature high", 5, 5, 45.1, 5},
		{"mobility high", 5, 5, 37, 10.5},
	}
	for _, c := range cases {
		if _, err := NewVitals(c.pain, c.wound, c.tempC, c.mobility, time.Now()); err == nil {
			t.Fatalf("%s: expected range error", c.name)
		}
	}
}

func TestKnownTag(t *testing.T) {
	if !KnownTag(TagHighPain) || !KnownTag(TagEmergency) {
		t.Fatal("expected vocabulary tags to be known")
	}
	if KnownTag(Tag("SOMETHING_ELSE")) {
		t.Fatal("expected unknown tag to be rejected")
	}
}

func TestResultHasAlert(t *testing.T) {
	r := Result{Alerts: []Tag{TagFever}}
	if !r.HasAlert(TagFever) {
		t.Fatal("expected fever alert to be present")
	}
	if r.HasAlert(TagHighPain) {
		t.Fatal("expected high pain alert to be absent")
	}
}
