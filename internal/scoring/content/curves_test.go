package content

import (
	"math"
	"testing"
	"time"
)

func TestWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum = %v, want 1.0", sum)
	}
}

func TestWordCountScore(t *testing.T) {
	tests := []struct {
		words int
		want  float64
	}{
		{0, 0},
		{300, 0.3},
		{1500, 1.0},
		{2000, 1.0},
		{3000, 1.0},
		{5000, 0.8},
		{12000, 0.8},
	}
	for _, tt := range tests {
		if got := wordCountScore(tt.words); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("wordCountScore(%d) = %v, want %v", tt.words, got, tt.want)
		}
	}

	// The ramp below 300 is proportional.
	if got := wordCountScore(150); math.Abs(got-0.15) > 1e-9 {
		t.Errorf("wordCountScore(150) = %v, want 0.15", got)
	}
	// Monotone decline past the optimum.
	if wordCountScore(3500) <= wordCountScore(4500) {
		t.Error("overlong content should score lower the longer it gets")
	}
}

func TestReadabilityScore(t *testing.T) {
	tests := []struct {
		flesch float64
		want   float64
	}{
		{-10, 0.2},
		{30, 0.5},
		{60, 1.0},
		{70, 1.0},
		{80, 1.0},
		{100, 0.7},
		{130, 0.7},
	}
	for _, tt := range tests {
		if got := readabilityScore(tt.flesch); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("readabilityScore(%v) = %v, want %v", tt.flesch, got, tt.want)
		}
	}
}

func TestKeywordScore(t *testing.T) {
	if got := keywordScore(0, false); got != 0.5 {
		t.Errorf("no-keyword score = %v, want neutral 0.5", got)
	}

	tests := []struct {
		density float64
		want    float64
	}{
		{0, 0.2},
		{1.5, 1.0},
		{2.0, 1.0},
		{2.5, 1.0},
		{4.5, 0.3},
		{9.0, 0.3},
	}
	for _, tt := range tests {
		if got := keywordScore(tt.density, true); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("keywordScore(%v) = %v, want %v", tt.density, got, tt.want)
		}
	}
}

func TestStructureScore(t *testing.T) {
	if got := structureScore(0, 0, 0); got != 0 {
		t.Errorf("structureScore(0,0,0) = %v, want 0", got)
	}
	if got := structureScore(5, 3, 3); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("structureScore(5,3,3) = %v, want 1.0", got)
	}
	// Components cap individually; exceeding them cannot push past 1.0.
	if got := structureScore(50, 30, 30); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("structureScore(50,30,30) = %v, want 1.0", got)
	}
	// Headings weigh double.
	if got := structureScore(5, 0, 0); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("structureScore(5,0,0) = %v, want 0.5", got)
	}
}

func TestEntityScore(t *testing.T) {
	if got := entityScore(0); got != 0.3 {
		t.Errorf("entityScore(0) = %v, want 0.3", got)
	}
	if got := entityScore(2); got != 1.0 {
		t.Errorf("entityScore(2) = %v, want 1.0", got)
	}
	if got := entityScore(10); got != 0.5 {
		t.Errorf("entityScore(10) = %v, want 0.5", got)
	}
}

func TestFreshnessScore(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	if got := freshnessScore(nil, now); got != 0.5 {
		t.Errorf("unknown publish date = %v, want neutral 0.5", got)
	}

	recent := now.AddDate(0, 0, -30)
	if got := freshnessScore(&recent, now); got != 1.0 {
		t.Errorf("30-day-old content = %v, want 1.0", got)
	}

	ancient := now.AddDate(-4, 0, 0)
	if got := freshnessScore(&ancient, now); got != 0.2 {
		t.Errorf("4-year-old content = %v, want floor 0.2", got)
	}

	yearOld := now.AddDate(-1, 0, 0)
	twoYears := now.AddDate(-2, 0, 0)
	if freshnessScore(&yearOld, now) <= freshnessScore(&twoYears, now) {
		t.Error("freshness should decline with age")
	}
}
