// Package shaper implements the engine's shape dictionary: a
// content-addressed interning table for attribute names, attribute
// paths, and shape descriptors, and the value-numbering compiler that
// turns a jsonvalue.Value into a (sid, payload) shaped record.
package shaper

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/latticedb/lattice/pkg/log"
	"github.com/latticedb/lattice/pkg/trierr"
)

// privateAttribute is skipped during shaping.
const privateAttribute = "_id"

// Shaper is the per-collection shape dictionary.
type Shaper struct {
	// Attribute-name interning: two maps (name->aid, aid->name) behind one mutex;
	// contention is not expected to be hot.
	namesMu    sync.Mutex
	namesByStr map[string]int64
	namesByAid map[int64]string
	nextAid    int64

	// Attribute-path interning. A dedicated mutex serialises the
	// check-and-insert critical section (find aid for each segment,
	// allocate the path record, assign pid, publish into both indexes).
	pathsMu     sync.Mutex
	pathsByName map[string]*AttributePath
	pathsByPid  map[int64]*AttributePath
	nextPid     int64

	// Shape interning: content-addressed by descriptor bytes.
	shapesMu     sync.Mutex
	shapesByHash map[string]*Shape
	shapesBySid  []*Shape // index 0 unused; sid is 1-based and dense
	nextSid      int64

	// shortStringCut is K: strings whose encoded byte length (including
	// the trailing zero sentinel) fits in K use the ShortString shape;
	// longer strings use LongString.
	shortStringCut int

	// Basic shapes pre-inserted at construction and cached here.
	NullSid        int64
	BooleanSid     int64
	NumberSid      int64
	ShortStringSid int64
	LongStringSid  int64
	EmptyListSid   int64
	EmptyArraySid  int64
}

// NewShaper constructs a shape dictionary with the given short-string
// cut length and pre-inserts the seven basic shapes: Null,
// Boolean, Number, ShortString, LongString, an empty heterogeneous
// List, and an empty Array (the shape of `{}`).
func NewShaper(shortStringCut int) *Shaper {
	if shortStringCut <= 0 {
		shortStringCut = 32
	}

	s := &Shaper{
		namesByStr:     make(map[string]int64),
		namesByAid:     make(map[int64]string),
		pathsByName:    make(map[string]*AttributePath),
		pathsByPid:     make(map[int64]*AttributePath),
		shapesByHash:   make(map[string]*Shape),
		shapesBySid:    []*Shape{nil},
		nextSid:        1,
		shortStringCut: shortStringCut,
	}

	s.NullSid = s.internShape(&Shape{Kind: KindNull, Fixed: true, DataSize: 0})
	s.BooleanSid = s.internShape(&Shape{Kind: KindBoolean, Fixed: true, DataSize: 1})
	s.NumberSid = s.internShape(&Shape{Kind: KindNumber, Fixed: true, DataSize: 8})
	s.ShortStringSid = s.internShape(&Shape{Kind: KindShortString, Fixed: true, DataSize: shortStringCut})
	s.LongStringSid = s.internShape(&Shape{Kind: KindLongString, Fixed: false, DataSize: -1})
	s.EmptyListSid = s.internShape(&Shape{Kind: KindList, Fixed: false, DataSize: -1})
	s.EmptyArraySid = s.internShape(&Shape{Kind: KindArray, Fixed: true, DataSize: 0, Fields: nil})

	return s
}

// FindAttributeName looks up name, inserting a new aid if absent.
// The aid sequence is strictly monotone and stable for the shaper's
// lifetime.
func (s *Shaper) FindAttributeName(name string) int64 {
	s.namesMu.Lock()
	defer s.namesMu.Unlock()

	if aid, ok := s.namesByStr[name]; ok {
		return aid
	}

	s.nextAid++
	aid := s.nextAid
	s.namesByStr[name] = aid
	s.namesByAid[aid] = name
	return aid
}

// LookupAttributeID returns the name registered for aid, if any.
func (s *Shaper) LookupAttributeID(aid int64) (string, bool) {
	s.namesMu.Lock()
	defer s.namesMu.Unlock()
	name, ok := s.namesByAid[aid]
	return name, ok
}

// FindAttributePathByName interns a dotted attribute path, returning
// its pid. Splits on '.', resolves each non-empty segment to an aid,
// and assigns a fresh pid under the dedicated path mutex so
// check-and-insert stays atomic across concurrent callers.
func (s *Shaper) FindAttributePathByName(dotted string) (int64, error) {
	s.pathsMu.Lock()
	defer s.pathsMu.Unlock()

	if p, ok := s.pathsByName[dotted]; ok {
		return p.Pid, nil
	}

	segments := strings.Split(dotted, ".")
	aids := make([]int64, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		aids = append(aids, s.FindAttributeName(seg))
	}
	if len(aids) == 0 {
		return 0, fmt.Errorf("shaper: empty attribute path")
	}

	s.nextPid++
	path := &AttributePath{Pid: s.nextPid, Aids: aids, Name: dotted}
	s.pathsByName[dotted] = path
	s.pathsByPid[path.Pid] = path

	return path.Pid, nil
}

// LookupAttributePathByPid returns the path record for pid, if any.
func (s *Shaper) LookupAttributePathByPid(pid int64) (*AttributePath, bool) {
	s.pathsMu.Lock()
	defer s.pathsMu.Unlock()
	p, ok := s.pathsByPid[pid]
	return p, ok
}

// descriptorKey builds the content-addressing key for a shape: bytes
// equal past the sid header hash to one entry.
func descriptorKey(sh *Shape) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d|%d|%d|", sh.Kind, sh.DataSize, sh.ElementSid)
	if sh.Kind == KindHomogeneousSizedList {
		fmt.Fprintf(&sb, "%d|", sh.ElementSize)
	}
	for _, sid := range sh.ElementSids {
		fmt.Fprintf(&sb, "%d,", sid)
	}
	sb.WriteByte('|')
	for _, f := range sh.Fields {
		fmt.Fprintf(&sb, "%d:%d,", f.Aid, f.Sid)
	}
	return sb.String()
}

// internShape returns the canonical Shape equal to sh, inserting a
// freshly numbered one if this is the first occurrence; sids are dense
// and assigned on first insertion.
func (s *Shaper) internShape(sh *Shape) int64 {
	key := descriptorKey(sh)

	s.shapesMu.Lock()
	defer s.shapesMu.Unlock()

	if existing, ok := s.shapesByHash[key]; ok {
		return existing.Sid
	}

	sid := s.nextSid
	s.nextSid++
	sh.Sid = sid
	s.shapesByHash[key] = sh
	s.shapesBySid = append(s.shapesBySid, sh)
	return sid
}

// LookupShape returns the shape registered under sid.
func (s *Shaper) LookupShape(sid int64) (*Shape, bool) {
	s.shapesMu.Lock()
	defer s.shapesMu.Unlock()
	if sid <= 0 || int(sid) >= len(s.shapesBySid) {
		return nil, false
	}
	sh := s.shapesBySid[sid]
	return sh, sh != nil
}

// ShapeCount returns the number of distinct shapes currently interned.
func (s *Shaper) ShapeCount() int {
	s.shapesMu.Lock()
	defer s.shapesMu.Unlock()
	return len(s.shapesBySid) - 1
}

// AttributeNameCount returns the number of distinct attribute names
// currently interned.
func (s *Shaper) AttributeNameCount() int {
	s.namesMu.Lock()
	defer s.namesMu.Unlock()
	return len(s.namesByAid)
}

// AttributePathCount returns the number of distinct attribute paths
// currently interned.
func (s *Shaper) AttributePathCount() int {
	s.pathsMu.Lock()
	defer s.pathsMu.Unlock()
	return len(s.pathsByPid)
}

// sortFields orders fields by (aid, sid) ascending, the stable order
// content-addressing requires before partitioning fixed/variable parts.
func sortFields(fields []ArrayField) {
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Aid != fields[j].Aid {
			return fields[i].Aid < fields[j].Aid
		}
		return fields[i].Sid < fields[j].Sid
	})
}

func (s *Shaper) warnShapeMismatch(context string) {
	trierr.Set(trierr.ShapeMismatch)
	log.WithComponent("shaper").Warn().Msg("shape mismatch during decode: " + context)
}

