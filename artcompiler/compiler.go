// Package artcompiler streams a sorted (word, frequency) sequence into a
// compiled ART index file, grounded on the reference implementation's
// ArtCompiler (src/art/compiler.rs): an in-memory stack of Node256-shaped
// scratch nodes tracking exactly the root-to-insertion-point path, flushed
// to disk as each newly added word diverges from the previous one.
package artcompiler

import (
	"fmt"

	"github.com/spellart/spellart/art"
	"github.com/spellart/spellart/spellerr"
	"github.com/spellart/spellart/store"
)

// scratchNode is the RAM-resident stand-in for every node on the current
// insertion path. Unlike the reference's Node256, flushed children and the
// still-pending one are tracked separately instead of sharing one array
// slot that starts as a RAM index and gets patched into a real file offset
// later — clearer in Go, same algorithm.
type scratchNode struct {
	header      art.Header
	children    [256]art.Ref // offsets of children already written to disk
	numChildren int          // total distinct children ever created at this node
	pendingKey  byte         // valid iff hasPending
	hasPending  bool         // true while this node's most recent child is still on the stack
}

// Compiler builds a compiled ART index file from words supplied in strictly
// ascending lexicographic order, per §4.4.
type Compiler struct {
	store      *store.Store
	rootOffset uint64
	nodes      []*scratchNode
}

// New creates the output file and reserves space for the root node slot.
func New(path string) (*Compiler, error) {
	st, err := store.Open(path, store.ReadWrite)
	if err != nil {
		return nil, spellerr.IO(fmt.Sprintf("open compiler output %q", path), err)
	}

	rootOffset, err := st.Reserve(art.N256Size)
	if err != nil {
		st.Close()
		return nil, spellerr.IO("reserve root node slot", err)
	}

	return &Compiler{
		store:      st,
		rootOffset: rootOffset,
		nodes:      []*scratchNode{{}},
	}, nil
}

// Add inserts word with the given frequency. word must be lexicographically
// greater than every word added so far; duplicates overwrite the frequency
// of the existing terminal node. The compiler does not validate ordering —
// calling Add out of order is a programming error (§4.4's failure
// semantics), not a detected UsageError.
func (c *Compiler) Add(word []byte, frequency uint32) error {
	return c.addAt(0, word, frequency)
}

func (c *Compiler) addAt(nodeIndex int, word []byte, frequency uint32) error {
	if len(word) == 0 {
		c.nodes[nodeIndex].header.Frequency = frequency
		return nil
	}

	key := word[0]
	n := c.nodes[nodeIndex]
	childIsLive := n.children[key].Present() || (n.hasPending && n.pendingKey == key)

	if !childIsLive {
		if nodeIndex+1 < len(c.nodes) {
			if err := c.flush(nodeIndex + 1); err != nil {
				return err
			}
		}
		n = c.nodes[nodeIndex]
		n.numChildren++
		n.hasPending = true
		n.pendingKey = key
		c.nodes = append(c.nodes, &scratchNode{})
	}

	return c.addAt(nodeIndex+1, word[1:], frequency)
}

// Build flushes every remaining RAM-resident node, writes the root, and
// closes the output file.
func (c *Compiler) Build() error {
	if err := c.flush(0); err != nil {
		return err
	}
	if err := c.store.Close(); err != nil {
		return spellerr.IO("close compiler output", err)
	}
	return nil
}

// flush runs path compression on the suffix [startIndex, len(nodes)) and
// then writes it to disk, per §4.4's "flush means: compress, then convert
// and append" description.
func (c *Compiler) flush(startIndex int) error {
	c.compress(startIndex)
	return c.write(startIndex)
}

// compress merges single-child, frequency-less, not-yet-full-path nodes
// into their one live child, from startIndex toward the end of the stack.
// Position 0 (the root) is never merged away: the root's file offset is
// fixed at construction, and its compressed path would otherwise swallow
// the first descent byte, splitting a single-word dictionary's structure
// from the shape §8's scenario 3 requires (a trivial root plus one
// non-root terminal carrying the full compressed suffix).
func (c *Compiler) compress(startIndex int) {
	index := startIndex
	for index+1 < len(c.nodes) {
		if index == 0 {
			index++
			continue
		}

		n := c.nodes[index]
		if n.numChildren != 1 || n.header.PathLength >= art.MaxPathLength || n.header.HasFrequency() {
			index++
			continue
		}

		removed := n
		c.nodes = append(c.nodes[:index], c.nodes[index+1:]...)
		absorbing := c.nodes[index]

		var newPath [art.MaxPathLength]byte
		copy(newPath[:], removed.header.Path[:removed.header.PathLength])
		newPath[removed.header.PathLength] = removed.pendingKey
		absorbing.header.Path = newPath
		absorbing.header.PathLength = removed.header.PathLength + 1
	}
}

// write converts and appends every node from the end of the stack down to
// startIndex, patching each parent's pointer slot before the parent itself
// is (eventually) written.
func (c *Compiler) write(startIndex int) error {
	for startIndex < len(c.nodes) {
		last := len(c.nodes) - 1
		node := c.nodes[last]
		isRoot := last == 0

		kind := art.VariantForChildCount(node.numChildren)
		if isRoot {
			kind = art.KindN256
		}
		raw := art.EncodeVariant(kind, node.header, node.children)

		var offset uint64
		var err error
		if isRoot {
			offset = c.rootOffset
			err = c.store.WriteAt(offset, raw)
		} else {
			offset, err = c.store.Append(raw, 1)
		}
		if err != nil {
			return spellerr.IO("write ART node", err)
		}

		if !isRoot {
			parent := c.nodes[last-1]
			parent.children[parent.pendingKey] = art.Ref(offset)
			parent.hasPending = false
		}

		c.nodes = c.nodes[:last]
	}
	return nil
}
