// Package skiplist implements the engine's probabilistic skiplist
// index: a leveled linked structure supporting Unique and
// Multi key modes, plus an interval query layer (query.go) and a
// bidirectional cursor (iterator.go).
package skiplist

import (
	"math/rand"
	"sync"

	"github.com/latticedb/lattice/pkg/trierr"
)

// MaxHeight bounds a node's tower height.
const MaxHeight = 40

// promotionP is the probability a node grows one more level.
const promotionP = 0.5

// Mode selects duplicate-key handling.
type Mode int

const (
	// Unique rejects an Insert whose key already exists.
	Unique Mode = iota
	// Multi allows repeated keys, ordered by insertion sequence.
	Multi
)

// CompareFunc orders two keys: negative if a < b, zero if equal,
// positive if a > b.
type CompareFunc func(a, b interface{}) int

// node is one skiplist element. forward holds per-level successor
// pointers; back is the level-0 predecessor, giving the structure a
// doubly linked bottom rail so iteration can run in both directions.
type node struct {
	key     interface{}
	value   interface{}
	seq     uint64
	forward []*node
	back    *node
}

// SkipList is a leveled, ordered index over a single key space.
type SkipList struct {
	mu      sync.RWMutex
	mode    Mode
	compare CompareFunc
	rnd     *rand.Rand

	header *node // sentinel, key/value unused, present at every level
	tail   *node // sentinel, key/value unused, present at every level

	height int // current number of levels in use, 1..MaxHeight
	length int
	nextSeq uint64
}

// New constructs an empty skiplist ordered by compare.
func New(mode Mode, compare CompareFunc, seed int64) *SkipList {
	s := &SkipList{
		mode:    mode,
		compare: compare,
		rnd:     rand.New(rand.NewSource(seed)),
		height:  1,
	}

	s.header = &node{forward: make([]*node, MaxHeight)}
	s.tail = &node{forward: make([]*node, MaxHeight)}
	for i := 0; i < MaxHeight; i++ {
		s.header.forward[i] = s.tail
	}
	s.tail.back = s.header

	return s
}

// Len returns the number of elements currently stored.
func (s *SkipList) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.length
}

func (s *SkipList) randomHeight() int {
	h := 1
	for h < MaxHeight && s.rnd.Float64() < promotionP {
		h++
	}
	return h
}

// effectiveCompare orders by key, breaking ties by insertion sequence
// in Multi mode so duplicates keep FIFO order, since the skiplist's
// own compare function only ever sees caller keys and is blind to
// ties.
func (s *SkipList) effectiveCompare(aKey interface{}, aSeq uint64, bKey interface{}, bSeq uint64) int {
	c := s.compare(aKey, bKey)
	if c != 0 || s.mode == Unique {
		return c
	}
	switch {
	case aSeq < bSeq:
		return -1
	case aSeq > bSeq:
		return 1
	default:
		return 0
	}
}

// findPath descends from the top level, filling update with, at each
// level, the last node strictly before the target (key, seq). seq is
// ^uint64(0) (maximum) when searching for the insertion point of a new
// key so ties fall after all existing equal keys in Multi mode.
func (s *SkipList) findPath(key interface{}, seq uint64) (update [MaxHeight]*node, target *node) {
	cur := s.header
	for lvl := s.height - 1; lvl >= 0; lvl-- {
		for cur.forward[lvl] != s.tail && s.less(cur.forward[lvl], key, seq) {
			cur = cur.forward[lvl]
		}
		update[lvl] = cur
	}
	target = cur.forward[0]
	return update, target
}

// less reports whether node n sorts strictly before (key, seq).
func (s *SkipList) less(n *node, key interface{}, seq uint64) bool {
	return s.effectiveCompare(n.key, n.seq, key, seq) < 0
}

// Insert adds key/value. Unique mode returns trierr.DuplicateKey if
// key is already present; Multi mode always succeeds, placing the new
// element after any existing equal keys.
func (s *SkipList) Insert(key, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	probeSeq := ^uint64(0) // sorts after all existing equal keys
	update, existing := s.findPath(key, probeSeq)

	if s.mode == Unique && existing != s.tail && s.compare(existing.key, key) == 0 {
		trierr.Set(trierr.DuplicateKey)
		return trierr.AsError(trierr.DuplicateKey)
	}

	h := s.randomHeight()
	if h > s.height {
		for lvl := s.height; lvl < h; lvl++ {
			update[lvl] = s.header
		}
		s.height = h
	}

	s.nextSeq++
	n := &node{key: key, value: value, seq: s.nextSeq, forward: make([]*node, h)}

	for lvl := 0; lvl < h; lvl++ {
		n.forward[lvl] = update[lvl].forward[lvl]
		update[lvl].forward[lvl] = n
	}

	n.back = update[0]
	if n.forward[0] != s.tail {
		n.forward[0].back = n
	} else {
		s.tail.back = n
	}

	s.length++
	return nil
}

// Remove deletes the first element equal to key (Unique mode) or, in
// Multi mode, the first element matching both key and value in
// insertion order. Returns trierr.NotFound if no match exists.
func (s *SkipList) Remove(key, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var update [MaxHeight]*node
	cur := s.header
	for lvl := s.height - 1; lvl >= 0; lvl-- {
		for cur.forward[lvl] != s.tail && s.compare(cur.forward[lvl].key, key) < 0 {
			cur = cur.forward[lvl]
		}
		update[lvl] = cur
	}

	target := cur.forward[0]
	for target != s.tail && s.compare(target.key, key) == 0 {
		if s.mode == Unique || target.value == value {
			break
		}
		update[0] = target
		target = target.forward[0]
	}

	if target == s.tail || s.compare(target.key, key) != 0 {
		trierr.Set(trierr.NotFound)
		return trierr.AsError(trierr.NotFound)
	}

	// Recompute the full update path now that we know the exact node,
	// since levels above 0 were only walked with the key comparison.
	update = s.updatePathFor(target)

	for lvl := 0; lvl < len(target.forward); lvl++ {
		if update[lvl].forward[lvl] == target {
			update[lvl].forward[lvl] = target.forward[lvl]
		}
	}

	if target.forward[0] != nil {
		target.forward[0].back = target.back
	}

	for s.height > 1 && s.header.forward[s.height-1] == s.tail {
		s.height--
	}

	s.length--
	return nil
}

// updatePathFor rebuilds, at every level, the predecessor of n by
// walking from the header using n's own (key, seq) ordering so Remove
// can unlink a specific duplicate in Multi mode.
func (s *SkipList) updatePathFor(n *node) [MaxHeight]*node {
	var update [MaxHeight]*node
	cur := s.header
	for lvl := s.height - 1; lvl >= 0; lvl-- {
		for cur.forward[lvl] != s.tail && cur.forward[lvl] != n && s.less(cur.forward[lvl], n.key, n.seq) {
			cur = cur.forward[lvl]
		}
		update[lvl] = cur
	}
	return update
}

// Update is deliberately unimplemented: the original index never
// supported in-place key mutation, only remove-then-reinsert. Calling
// it is a programming error.
func (s *SkipList) Update(key, oldValue, newValue interface{}) {
	panic("skiplist: Update is not supported, remove then insert")
}
