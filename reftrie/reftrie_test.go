package reftrie

import "testing"

// TestDistanceVectors checks the same nine pairs §8 lists for the DP/bit-
// parallel oracles, confirming this independent implementation agrees.
func TestDistanceVectors(t *testing.T) {
	for _, tc := range []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"Saturday", "Sunday", 3},
		{"gifts", "profit", 5},
		{"Something", "Smoething", 1},
		{"Pomatomus", "Pomatomus", 0},
		{"kynar", "kaynar", 1},
		{"kynar", "kayna", 2},
		{"muahahah", "muhahahah", 1},
		{"sakit", "safekit", 2},
	} {
		if got := distance(tc.a, tc.b); got != tc.want {
			t.Errorf("distance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestAddOverwritesFrequency(t *testing.T) {
	tr := New()
	tr.Add("word", 1)
	tr.Add("word", 9)

	results := tr.Search("word", 0)
	if len(results) != 1 || results[0].Frequency != 9 {
		t.Fatalf("Search(\"word\", 0) = %+v, want one result with frequency 9", results)
	}
}

func TestSearchOrdersAndFilters(t *testing.T) {
	tr := New()
	tr.Add("cat", 10)
	tr.Add("cap", 1)
	tr.Add("car", 20)
	tr.Add("cab", 20)
	tr.Add("dog", 1)

	results := tr.Search("cat", 1)
	var words []string
	for _, r := range results {
		words = append(words, r.Word)
	}
	want := []string{"cat", "cab", "car", "cap"}
	if len(words) != len(want) {
		t.Fatalf("Search words = %v, want %v", words, want)
	}
	for i := range want {
		if words[i] != want[i] {
			t.Fatalf("Search words = %v, want %v", words, want)
		}
	}
}
