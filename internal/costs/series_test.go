package costs

import (
	"errors"
	"testing"
)

func TestAccumulate_ActualAndForecast(t *testing.T) {
	actual := []CostRecord{
		{Date: day("2026-03-03"), Cost: dec("3")},
		{Date: day("2026-03-01"), Cost: dec("1")},
		{Date: day("2026-03-02"), Cost: dec("2")},
	}
	forecast := []CostRecord{
		{Date: day("2026-03-05"), Cost: dec("5")},
		{Date: day("2026-03-02"), Cost: dec("10")}, // overlaps actual data, dropped
		{Date: day("2026-03-03"), Cost: dec("10")}, // last actual date, dropped
		{Date: day("2026-03-04"), Cost: dec("4")},
	}

	points, err := Accumulate(actual, forecast)
	if err != nil {
		t.Fatalf("Accumulate() error = %v, want nil", err)
	}

	want := []struct {
		date     string
		value    string
		forecast bool
	}{
		{"2026-03-01", "1", false},
		{"2026-03-02", "3", false},
		{"2026-03-03", "6", false},
		{"2026-03-04", "10", true},
		{"2026-03-05", "15", true},
	}

	if len(points) != len(want) {
		t.Fatalf("Expected %d points, got %d", len(want), len(points))
	}
	for i, w := range want {
		p := points[i]
		if !p.Date.Equal(day(w.date)) {
			t.Errorf("point[%d] date: got %v, want %v", i, p.Date, w.date)
		}
		if !p.Value.Equal(dec(w.value)) {
			t.Errorf("point[%d] value: got %v, want %v", i, p.Value, w.value)
		}
		if p.Forecast != w.forecast {
			t.Errorf("point[%d] forecast: got %v, want %v", i, p.Forecast, w.forecast)
		}
	}

	// Inputs stay untouched
	if !actual[0].Date.Equal(day("2026-03-03")) {
		t.Errorf("actual input was reordered: first date %v", actual[0].Date)
	}
}

func TestAccumulate_Properties(t *testing.T) {
	actual := []CostRecord{
		{Date: day("2026-03-02"), Cost: dec("1.111")},
		{Date: day("2026-03-01"), Cost: dec("2.222")},
		{Date: day("2026-03-02"), Cost: dec("3.333")},
	}
	forecast := []CostRecord{
		{Date: day("2026-03-04"), Cost: dec("0.5")},
		{Date: day("2026-03-03"), Cost: dec("0.25")},
	}

	points, err := Accumulate(actual, forecast)
	if err != nil {
		t.Fatalf("Accumulate() error = %v, want nil", err)
	}

	for i := 1; i < len(points); i++ {
		if points[i].Date.Before(points[i-1].Date) {
			t.Errorf("point[%d] date %v is before point[%d] date %v", i, points[i].Date, i-1, points[i-1].Date)
		}
	}

	lastActual := points[len(actual)-1]
	if lastActual.Forecast {
		t.Fatal("last actual point is tagged as forecast")
	}
	if !lastActual.Value.Equal(dec("6.67")) {
		t.Errorf("final actual value: got %v, want 6.67", lastActual.Value)
	}
	if last := points[len(points)-1]; !last.Value.Equal(dec("7.42")) {
		t.Errorf("final value: got %v, want 7.42", last.Value)
	}
}

func TestAccumulate_NoForecast(t *testing.T) {
	actual := []CostRecord{
		{Date: day("2026-03-01"), Cost: dec("1")},
		{Date: day("2026-03-02"), Cost: dec("2")},
	}

	points, err := Accumulate(actual, nil)
	if err != nil {
		t.Fatalf("Accumulate() error = %v, want nil", err)
	}
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	for _, p := range points {
		if p.Forecast {
			t.Errorf("point %v tagged as forecast", p.Date)
		}
	}
}

func TestAccumulate_EmptyActual_Error(t *testing.T) {
	forecast := []CostRecord{{Date: day("2026-03-01"), Cost: dec("1")}}

	_, err := Accumulate(nil, forecast)
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Accumulate() error = %v, want ErrEmptyInput", err)
	}
}

func TestAccumulatedPoint_Label(t *testing.T) {
	p := AccumulatedPoint{Date: day("2026-03-07")}
	if got := p.Label(); got != "07 Mar" {
		t.Errorf("Label() = %q, want %q", got, "07 Mar")
	}
}
