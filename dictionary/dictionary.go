// Package dictionary reads the compiler's input format: one
// "<word> <frequency>" record per line, per SPEC_FULL.md §6.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spellart/spellart/memtable"
	"github.com/spellart/spellart/spellerr"
)

// Entry is one parsed dictionary record.
type Entry struct {
	Word      string
	Frequency uint32
}

// Read parses every line of r as "<word> <whitespace> <positive_integer>",
// returning a spellerr.FormatError on the first malformed line (missing
// word, missing or non-positive frequency). It does not sort the result;
// callers that feed a Compiler must order it first, through Sort or
// Staging.
func Read(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	// dictionaries can carry long words; grow past bufio's 64KiB default.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []Entry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, spellerr.Format(fmt.Sprintf("dictionary line %d: want \"<word> <frequency>\", got %q", lineNo, line), nil)
		}

		word := fields[0]
		freq, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil || freq == 0 {
			return nil, spellerr.Format(fmt.Sprintf("dictionary line %d: invalid frequency %q", lineNo, fields[1]), err)
		}

		entries = append(entries, Entry{Word: word, Frequency: uint32(freq)})
	}
	if err := scanner.Err(); err != nil {
		return nil, spellerr.IO("read dictionary", err)
	}

	return entries, nil
}

// Sort orders entries lexicographically by word, the order artcompiler.Add
// requires, per §4.4. Duplicate words are left in input order; the last one
// wins once fed through Compiler.Add, matching §4.4's overwrite semantics.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Word < entries[j].Word
	})
}

// Staging accumulates (word, frequency) pairs in arbitrary order and
// replays them in strictly ascending lexicographic order with duplicates
// already collapsed to their last-written frequency — the order and
// overwrite semantics artcompiler.Add requires. It adapts
// memtable.SkipList, the teacher's in-memory ordered staging area ahead of
// an SST flush, to a dictionary staging area ahead of an ART compile: the
// same "accumulate unordered writes, replay them sorted" role, a different
// payload.
type Staging struct {
	list *memtable.SkipList[string, uint32]
}

// NewStaging returns an empty staging area.
func NewStaging() *Staging {
	return &Staging{list: memtable.NewSkipListMemtable[string, uint32]()}
}

// Put records word at frequency, overwriting any previous frequency for the
// same word.
func (s *Staging) Put(word string, frequency uint32) {
	s.list.Put(word, frequency)
}

// Entries returns every staged word in ascending lexicographic order.
func (s *Staging) Entries() []Entry {
	var entries []Entry
	for rec := range s.list.Iterator() {
		entries = append(entries, Entry{Word: rec.Key, Frequency: rec.Value})
	}
	return entries
}
