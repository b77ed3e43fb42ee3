// Package artsearch implements read-only queries against a compiled ART
// index file: exact lookup, bounded-distance search driven by a
// distance.Oracle, and the informational/diagnostic queries from §4.3.
package artsearch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spellart/spellart/art"
	"github.com/spellart/spellart/distance"
	"github.com/spellart/spellart/spellerr"
	"github.com/spellart/spellart/store"
)

// Result is one match: the stored word, its frequency, and its distance
// from the query that produced it.
type Result struct {
	Word      []byte
	Frequency uint32
	Distance  int
}

// Searcher holds a read-only mapping over a compiled index file.
type Searcher struct {
	store *store.Store
}

// Open maps path read-only.
func Open(path string) (*Searcher, error) {
	st, err := store.Open(path, store.ReadOnly)
	if err != nil {
		return nil, spellerr.IO(fmt.Sprintf("open index %q", path), err)
	}
	return &Searcher{store: st}, nil
}

// Close releases the mapping.
func (s *Searcher) Close() error {
	return s.store.Close()
}

func (s *Searcher) root() ([]byte, art.Kind, error) {
	raw, err := s.store.RootBytes(uint64(art.N256Size))
	if err != nil {
		return nil, 0, spellerr.IO("read root node", err)
	}
	return raw, art.KindN256, nil
}

func (s *Searcher) nodeAt(ref art.Ref) ([]byte, art.Kind, error) {
	header, err := s.store.Bytes(uint64(ref), art.HeaderSize)
	if err != nil {
		return nil, 0, spellerr.IO("read node header", err)
	}
	kind := art.ReadHeader(header).Kind
	raw, err := s.store.Bytes(uint64(ref), uint64(art.SizeForKind(kind)))
	if err != nil {
		return nil, 0, spellerr.IO("read node body", err)
	}
	return raw, kind, nil
}

// Search drives oracle (already reset to the query word) down the tree and
// returns every match within maxDistance, sorted by (distance asc,
// frequency desc, word lex asc) per §4.3. maxDistance == 0 takes the
// simpler exact-match path described in §4.3 instead of pushing through the
// oracle.
func (s *Searcher) Search(oracle distance.Oracle, maxDistance int) ([]Result, error) {
	if maxDistance == 0 {
		freq, ok, err := s.searchExact(oracle.Word())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		word := append([]byte(nil), oracle.Word()...)
		return []Result{{Word: word, Frequency: freq, Distance: 0}}, nil
	}

	raw, kind, err := s.root()
	if err != nil {
		return nil, err
	}

	var results []Result
	if err := s.descendBounded(raw, kind, oracle, maxDistance, &results); err != nil {
		return nil, err
	}
	sortResults(results)
	return results, nil
}

func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		return string(a.Word) < string(b.Word)
	})
}

// searchExact walks the compressed-path/key-dispatch traversal from §4.3
// without touching an oracle at all.
func (s *Searcher) searchExact(word []byte) (uint32, bool, error) {
	raw, kind, err := s.root()
	if err != nil {
		return 0, false, err
	}
	return s.descendExact(raw, kind, word)
}

func (s *Searcher) descendExact(raw []byte, kind art.Kind, remaining []byte) (uint32, bool, error) {
	h := art.ReadHeader(raw)
	path := h.Path[:h.PathLength]
	if len(remaining) < len(path) {
		return 0, false, nil
	}
	for i, b := range path {
		if remaining[i] != b {
			return 0, false, nil
		}
	}
	remaining = remaining[len(path):]

	if len(remaining) == 0 {
		if !h.HasFrequency() {
			return 0, false, nil
		}
		return h.Frequency, true, nil
	}

	childRef := art.Lookup(kind, raw, remaining[0])
	if !childRef.Present() {
		return 0, false, nil
	}
	childRaw, childKind, err := s.nodeAt(childRef)
	if err != nil {
		return 0, false, err
	}
	return s.descendExact(childRaw, childKind, remaining[1:])
}

// descendBounded implements §4.3's bounded-distance traversal: push the
// node's compressed path into the oracle (bailing out early if the oracle
// gives up hope), record a result if this node terminates a word within
// range, then recurse into every child whose key still has hope, finally
// popping everything this call pushed.
func (s *Searcher) descendBounded(raw []byte, kind art.Kind, oracle distance.Oracle, max int, results *[]Result) error {
	h := art.ReadHeader(raw)
	path := h.Path[:h.PathLength]

	pushed := 0
	for _, b := range path {
		oracle.Push(b)
		pushed++
		if !oracle.CanContinue(max) {
			for pushed > 0 {
				oracle.Pop()
				pushed--
			}
			return nil
		}
	}

	if h.HasFrequency() && oracle.Distance() <= max {
		*results = append(*results, Result{
			Word:      append([]byte(nil), oracle.Current()...),
			Frequency: h.Frequency,
			Distance:  oracle.Distance(),
		})
	}

	for key, childRef := range art.Children(kind, raw) {
		oracle.Push(key)
		if oracle.CanContinue(max) {
			childRaw, childKind, err := s.nodeAt(childRef)
			if err != nil {
				oracle.Pop()
				return err
			}
			if err := s.descendBounded(childRaw, childKind, oracle, max, results); err != nil {
				oracle.Pop()
				return err
			}
		}
		oracle.Pop()
	}

	for pushed > 0 {
		oracle.Pop()
		pushed--
	}
	return nil
}

// WordCount returns the total number of terminal (frequency-bearing) nodes.
func (s *Searcher) WordCount() (int, error) {
	raw, kind, err := s.root()
	if err != nil {
		return 0, err
	}
	return s.wordsRec(raw, kind)
}

func (s *Searcher) wordsRec(raw []byte, kind art.Kind) (int, error) {
	h := art.ReadHeader(raw)
	count := 0
	if h.HasFrequency() {
		count = 1
	}
	for _, childRef := range art.Children(kind, raw) {
		childRaw, childKind, err := s.nodeAt(childRef)
		if err != nil {
			return 0, err
		}
		sub, err := s.wordsRec(childRaw, childKind)
		if err != nil {
			return 0, err
		}
		count += sub
	}
	return count, nil
}

// NodeCount returns the total number of nodes, root included.
func (s *Searcher) NodeCount() (int, error) {
	raw, kind, err := s.root()
	if err != nil {
		return 0, err
	}
	return s.nodesRec(raw, kind)
}

func (s *Searcher) nodesRec(raw []byte, kind art.Kind) (int, error) {
	count := 1
	for _, childRef := range art.Children(kind, raw) {
		childRaw, childKind, err := s.nodeAt(childRef)
		if err != nil {
			return 0, err
		}
		sub, err := s.nodesRec(childRaw, childKind)
		if err != nil {
			return 0, err
		}
		count += sub
	}
	return count, nil
}

// Height returns the number of node-to-node edges on the tree's deepest
// path (path-compressed bytes within a node do not add to height).
func (s *Searcher) Height() (int, error) {
	raw, kind, err := s.root()
	if err != nil {
		return 0, err
	}
	return s.heightRec(raw, kind)
}

func (s *Searcher) heightRec(raw []byte, kind art.Kind) (int, error) {
	if kind == art.KindLeaf0 {
		return 0, nil
	}
	best := 0
	for _, childRef := range art.Children(kind, raw) {
		childRaw, childKind, err := s.nodeAt(childRef)
		if err != nil {
			return 0, err
		}
		sub, err := s.heightRec(childRaw, childKind)
		if err != nil {
			return 0, err
		}
		if sub+1 > best {
			best = sub + 1
		}
	}
	return best, nil
}

// LongestWord returns the byte length of the longest stored word.
func (s *Searcher) LongestWord() (int, error) {
	raw, kind, err := s.root()
	if err != nil {
		return 0, err
	}
	return s.longestSuffix(raw, kind)
}

// longestSuffix returns the longest word-byte contribution of this
// subtree, not counting the single descent byte the parent uses to reach
// it (the parent's own recursive call adds that byte).
func (s *Searcher) longestSuffix(raw []byte, kind art.Kind) (int, error) {
	h := art.ReadHeader(raw)
	best := 0
	for _, childRef := range art.Children(kind, raw) {
		childRaw, childKind, err := s.nodeAt(childRef)
		if err != nil {
			return 0, err
		}
		sub, err := s.longestSuffix(childRaw, childKind)
		if err != nil {
			return 0, err
		}
		if 1+sub > best {
			best = 1 + sub
		}
	}
	return int(h.PathLength) + best, nil
}

// Graph renders the tree as Graphviz "dot" source, grounded on the
// reference implementation's ArtSearch::graph (node shape per variant,
// green-filled nodes for terminals, edge labels carrying the descent byte
// plus the child's compressed path).
func (s *Searcher) Graph() (string, error) {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	raw, kind, err := s.root()
	if err != nil {
		return "", err
	}
	if err := s.graphRec(&b, 0, raw, kind); err != nil {
		return "", err
	}
	b.WriteString("}\n")
	return b.String(), nil
}

func (s *Searcher) graphRec(b *strings.Builder, offset uint64, raw []byte, kind art.Kind) error {
	h := art.ReadHeader(raw)
	fmt.Fprintf(b, "%d [", offset)
	if h.HasFrequency() {
		fmt.Fprintf(b, "label=%q, color=green, style=filled", h.Frequency)
	} else {
		b.WriteString(`label=""`)
	}
	fmt.Fprintf(b, ", shape=%s];\n", graphShape(kind))

	for key, childRef := range art.Children(kind, raw) {
		childRaw, childKind, err := s.nodeAt(childRef)
		if err != nil {
			return err
		}
		childHeader := art.ReadHeader(childRaw)
		label := append([]byte{key}, childHeader.Path[:childHeader.PathLength]...)
		fmt.Fprintf(b, "%d -> %d [label=%q];\n", offset, uint64(childRef), label)
		if err := s.graphRec(b, uint64(childRef), childRaw, childKind); err != nil {
			return err
		}
	}
	return nil
}

func graphShape(kind art.Kind) string {
	switch kind {
	case art.KindLeaf0:
		return "circle"
	case art.KindN4:
		return "triangle"
	case art.KindN16:
		return "box"
	case art.KindN48:
		return "pentagon"
	default:
		return "hexagon"
	}
}
