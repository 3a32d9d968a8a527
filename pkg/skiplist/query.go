package skiplist

import "fmt"

// Op is a leaf comparison or the AND combinator. Interior nodes are
// AND-only: there is no OR operator, so each lookup evaluates a single
// conjunctive range.
type Op int

const (
	OpEQ Op = iota
	OpLT
	OpLE
	OpGT
	OpGE
	OpAnd
)

// Condition is one node of the operator tree passed to Range. Leaves
// carry a Key; the AND interior carries Left/Right subtrees.
type Condition struct {
	Op   Op
	Key  interface{}
	Left *Condition
	Right *Condition
}

// EQ, LT, LE, GT, GE build leaf conditions.
func EQ(key interface{}) *Condition { return &Condition{Op: OpEQ, Key: key} }
func LT(key interface{}) *Condition { return &Condition{Op: OpLT, Key: key} }
func LE(key interface{}) *Condition { return &Condition{Op: OpLE, Key: key} }
func GT(key interface{}) *Condition { return &Condition{Op: OpGT, Key: key} }
func GE(key interface{}) *Condition { return &Condition{Op: OpGE, Key: key} }

// And conjoins two conditions.
func And(left, right *Condition) *Condition {
	return &Condition{Op: OpAnd, Left: left, Right: right}
}

// interval is an open-both-ends-by-default bound pair; HasLower/HasUpper
// false means unbounded on that side.
type interval struct {
	hasLower  bool
	lower     interface{}
	lowerIncl bool
	hasUpper  bool
	upper     interface{}
	upperIncl bool
}

// evalInterval collapses a Condition tree into a single interval,
// intersecting AND branches (max of lower bounds, min of upper bounds).
// A tree containing anything but EQ/LT/LE/GT/GE leaves and AND interior
// nodes is rejected; only AND of leaf comparisons is supported.
func (s *SkipList) evalInterval(c *Condition) (*interval, error) {
	if c == nil {
		return &interval{}, nil
	}

	switch c.Op {
	case OpEQ:
		return &interval{hasLower: true, lower: c.Key, lowerIncl: true, hasUpper: true, upper: c.Key, upperIncl: true}, nil
	case OpLT:
		return &interval{hasUpper: true, upper: c.Key, upperIncl: false}, nil
	case OpLE:
		return &interval{hasUpper: true, upper: c.Key, upperIncl: true}, nil
	case OpGT:
		return &interval{hasLower: true, lower: c.Key, lowerIncl: false}, nil
	case OpGE:
		return &interval{hasLower: true, lower: c.Key, lowerIncl: true}, nil
	case OpAnd:
		left, err := s.evalInterval(c.Left)
		if err != nil {
			return nil, err
		}
		right, err := s.evalInterval(c.Right)
		if err != nil {
			return nil, err
		}
		return s.intersect(left, right), nil
	default:
		return nil, fmt.Errorf("skiplist: unsupported operator %d", c.Op)
	}
}

// intersect combines two intervals: the tighter (max) lower bound and
// the tighter (min) upper bound survive.
func (s *SkipList) intersect(a, b *interval) *interval {
	out := &interval{}

	switch {
	case !a.hasLower:
		out.hasLower, out.lower, out.lowerIncl = b.hasLower, b.lower, b.lowerIncl
	case !b.hasLower:
		out.hasLower, out.lower, out.lowerIncl = a.hasLower, a.lower, a.lowerIncl
	default:
		c := s.compare(a.lower, b.lower)
		switch {
		case c > 0:
			out.hasLower, out.lower, out.lowerIncl = true, a.lower, a.lowerIncl
		case c < 0:
			out.hasLower, out.lower, out.lowerIncl = true, b.lower, b.lowerIncl
		default:
			out.hasLower, out.lower = true, a.lower
			out.lowerIncl = a.lowerIncl && b.lowerIncl
		}
	}

	switch {
	case !a.hasUpper:
		out.hasUpper, out.upper, out.upperIncl = b.hasUpper, b.upper, b.upperIncl
	case !b.hasUpper:
		out.hasUpper, out.upper, out.upperIncl = a.hasUpper, a.upper, a.upperIncl
	default:
		c := s.compare(a.upper, b.upper)
		switch {
		case c < 0:
			out.hasUpper, out.upper, out.upperIncl = true, a.upper, a.upperIncl
		case c > 0:
			out.hasUpper, out.upper, out.upperIncl = true, b.upper, b.upperIncl
		default:
			out.hasUpper, out.upper = true, a.upper
			out.upperIncl = a.upperIncl && b.upperIncl
		}
	}

	return out
}

// leftLookup finds the first node satisfying iv's lower bound: the
// first node whose key is > lower (exclusive) or >= lower (inclusive).
// Duplicate keys in Multi mode are already contiguous in key order, so
// a plain key comparison is enough; the insertion-sequence tie-break
// only matters for Insert's own ordering within that run.
func (s *SkipList) leftLookup(iv *interval) *node {
	if !iv.hasLower {
		return s.header.forward[0]
	}

	before := func(n *node) bool {
		c := s.compare(n.key, iv.lower)
		if c < 0 {
			return true
		}
		return c == 0 && !iv.lowerIncl
	}

	cur := s.header
	for lvl := s.height - 1; lvl >= 0; lvl-- {
		for cur.forward[lvl] != s.tail && before(cur.forward[lvl]) {
			cur = cur.forward[lvl]
		}
	}
	return cur.forward[0]
}

// rightLookup finds the last node satisfying iv's upper bound.
func (s *SkipList) rightLookup(iv *interval) *node {
	if !iv.hasUpper {
		if s.tail.back == s.header {
			return nil
		}
		return s.tail.back
	}

	within := func(n *node) bool {
		c := s.compare(n.key, iv.upper)
		if c < 0 {
			return true
		}
		return c == 0 && iv.upperIncl
	}

	cur := s.header
	for lvl := s.height - 1; lvl >= 0; lvl-- {
		for cur.forward[lvl] != s.tail && within(cur.forward[lvl]) {
			cur = cur.forward[lvl]
		}
	}
	if cur == s.header {
		return nil
	}
	return cur
}

// Range returns an iterator over every element whose key satisfies c,
// positioned before the first matching element.
func (s *SkipList) Range(c *Condition) (*Iterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	iv, err := s.evalInterval(c)
	if err != nil {
		return nil, err
	}

	start := s.leftLookup(iv)
	end := s.rightLookup(iv)

	if end == nil || start == s.tail || s.compare(start.key, end.key) > 0 {
		return &Iterator{list: s, cur: s.header, end: s.header}, nil
	}

	return &Iterator{list: s, cur: start.back, end: end}, nil
}

// All returns an iterator over every element in ascending key order.
func (s *SkipList) All() *Iterator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &Iterator{list: s, cur: s.header, end: s.tail.back}
}
