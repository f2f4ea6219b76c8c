package similarity

import (
	"math"
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	got := ExtractKeywords("The 10 Best Hiking Trails in Patagonia!")

	want := map[string]bool{"hiking": true, "trails": true, "patagonia": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractKeywords = %v, want %v", got, want)
	}
}

func TestExtractKeywordsSpanish(t *testing.T) {
	got := ExtractKeywords("Los mejores senderos para caminar en la Patagonia")

	if got["mejores"] || got["para"] || got["los"] {
		t.Errorf("Spanish stop-words survived: %v", got)
	}
	if !got["senderos"] || !got["patagonia"] || !got["caminar"] {
		t.Errorf("content words missing: %v", got)
	}
}

func TestExtractKeywordsDropsShortTokens(t *testing.T) {
	got := ExtractKeywords("Go vs C: a 10k comparison")
	if got["go"] || got["vs"] || got["10"] {
		t.Errorf("short tokens survived: %v", got)
	}
	if !got["comparison"] || !got["10k"] {
		t.Errorf("expected tokens missing: %v", got)
	}
}

func TestJaccard(t *testing.T) {
	a := ExtractKeywords("hiking trails patagonia")
	b := ExtractKeywords("hiking boots patagonia")

	// Intersection {hiking, patagonia}, union {hiking, trails, patagonia, boots}.
	if got := Jaccard(a, b); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Jaccard = %v, want 0.5", got)
	}
}

func TestJaccardProperties(t *testing.T) {
	a := ExtractKeywords("winter camping gear checklist")
	b := ExtractKeywords("summer trail running nutrition")

	// Symmetric.
	if Jaccard(a, b) != Jaccard(b, a) {
		t.Error("Jaccard is not symmetric")
	}

	// Identity scores 1.
	if got := Jaccard(a, a); got != 1.0 {
		t.Errorf("Jaccard(a,a) = %v, want 1.0", got)
	}

	// Empty sets score 0, not NaN.
	empty := map[string]bool{}
	if got := Jaccard(a, empty); got != 0 {
		t.Errorf("Jaccard(a, empty) = %v, want 0", got)
	}
	if got := Jaccard(empty, empty); got != 0 {
		t.Errorf("Jaccard(empty, empty) = %v, want 0", got)
	}

	// Bounded.
	if got := Jaccard(a, b); got < 0 || got > 1 {
		t.Errorf("Jaccard = %v, out of [0,1]", got)
	}
}

func TestSharedKeywords(t *testing.T) {
	a := ExtractKeywords("patagonia hiking trails")
	b := ExtractKeywords("trails and hiking in patagonia")

	got := SharedKeywords(a, b)
	want := []string{"hiking", "patagonia", "trails"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SharedKeywords = %v, want %v (lexical order)", got, want)
	}

	if shared := SharedKeywords(a, map[string]bool{}); shared != nil {
		t.Errorf("SharedKeywords with empty set = %v, want nil", shared)
	}
}
