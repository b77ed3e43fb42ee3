// Package reftrie is a deliberately naive, independent reference
// implementation used as the "oracle of correctness" for §8 scenario 5: a
// flat list of (word, frequency) pairs searched by brute-force distance
// computation, with no shared code path with art/artcompiler/artsearch or
// the distance package's incremental oracles. Its only job is to agree with
// Searcher.Search on every query; if it doesn't, the ART traversal or its
// path-compression/pruning logic has a bug the oracle tests alone wouldn't
// catch.
package reftrie

import "sort"

// Entry is one stored (word, frequency) pair.
type Entry struct {
	Word      string
	Frequency uint32
}

// Result is one match, shaped to compare directly against artsearch.Result.
type Result struct {
	Word      string
	Frequency uint32
	Distance  int
}

// Trie holds the dictionary as a flat slice; "trie" names the role it
// plays in the property test (ground truth for a trie-shaped ART index),
// not its own data structure.
type Trie struct {
	entries []Entry
}

// New returns an empty reference dictionary.
func New() *Trie {
	return &Trie{}
}

// Add inserts word with the given frequency, overwriting any prior entry
// for the same word (matching §4.4's duplicate-overwrite semantics).
func (t *Trie) Add(word string, frequency uint32) {
	for i := range t.entries {
		if t.entries[i].Word == word {
			t.entries[i].Frequency = frequency
			return
		}
	}
	t.entries = append(t.entries, Entry{Word: word, Frequency: frequency})
}

// Search scans every stored entry, computing Damerau-Levenshtein distance
// from query independently (a fresh full matrix per call, no incremental
// state), and returns every entry within max, sorted by (distance asc,
// frequency desc, word lex asc) to match artsearch.Search's contract.
func (t *Trie) Search(query string, max int) []Result {
	var results []Result
	for _, e := range t.entries {
		d := distance(query, e.Word)
		if d <= max {
			results = append(results, Result{Word: e.Word, Frequency: e.Frequency, Distance: d})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		return a.Word < b.Word
	})
	return results
}

// distance computes the full Damerau-Levenshtein distance between a and b
// via the textbook O(|a|*|b|) matrix, restricted to adjacent transpositions
// (the same edit set §4.2 defines), independently of distance.DP.
func distance(a, b string) int {
	n, m := len(a), len(b)
	d := make([][]int, n+1)
	for i := range d {
		d[i] = make([]int, m+1)
		d[i][0] = i
	}
	for j := 0; j <= m; j++ {
		d[0][j] = j
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			del := d[i-1][j] + 1
			ins := d[i][j-1] + 1
			sub := d[i-1][j-1] + cost
			v := min(del, min(ins, sub))

			if i >= 2 && j >= 2 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				v = min(v, d[i-2][j-2]+cost)
			}

			d[i][j] = v
		}
	}

	return d[n][m]
}
