package shaper

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/latticedb/lattice/pkg/jsonvalue"
)

// Shape computes the shaped encoding of v: interns (or looks up) the
// structural shape of v and produces the binary payload for this
// particular instance. The _id attribute is skipped on Array values.
func (s *Shaper) Shape(v *jsonvalue.Value) (*ShapeValue, error) {
	switch v.Type() {
	case jsonvalue.Null:
		return &ShapeValue{Sid: s.NullSid, Fixed: true, Size: 0}, nil

	case jsonvalue.Bool:
		b := byte(0)
		if v.AsBool() {
			b = 1
		}
		return &ShapeValue{Sid: s.BooleanSid, Fixed: true, Size: 1, Data: []byte{b}}, nil

	case jsonvalue.Number:
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.AsNumber()))
		return &ShapeValue{Sid: s.NumberSid, Fixed: true, Size: 8, Data: buf}, nil

	case jsonvalue.String:
		return s.shapeString(v.AsString())

	case jsonvalue.List:
		return s.shapeList(v)

	case jsonvalue.Object:
		return s.shapeObject(v)

	default:
		return nil, fmt.Errorf("shaper: unsupported value type %s", v.Type())
	}
}

func (s *Shaper) shapeString(str string) (*ShapeValue, error) {
	raw := []byte(str)
	if len(raw)+1 <= s.shortStringCut {
		buf := make([]byte, s.shortStringCut)
		copy(buf, raw)
		return &ShapeValue{Sid: s.ShortStringSid, Fixed: true, Size: s.shortStringCut, Data: buf}, nil
	}

	// LongString payload: 4-byte length prefix, bytes, trailing zero.
	buf := make([]byte, 4+len(raw)+1)
	binary.LittleEndian.PutUint32(buf, uint32(len(raw)))
	copy(buf[4:], raw)
	return &ShapeValue{Sid: s.LongStringSid, Fixed: false, Size: len(buf), Data: buf}, nil
}

// shapeList classifies a List value. A list whose elements all share
// one sid is homogeneous: fixed-size elements of the same byte size
// give HomogeneousSizedList (generic over count); otherwise it is a
// HomogeneousList (an offset table is carried in the payload). A list
// of mixed element sids is heterogeneous and content-addressed by the
// exact per-position sid sequence.
func (s *Shaper) shapeList(v *jsonvalue.Value) (*ShapeValue, error) {
	elems := v.List()
	if len(elems) == 0 {
		return &ShapeValue{Sid: s.EmptyListSid, Fixed: false, Size: 0}, nil
	}

	children := make([]*ShapeValue, len(elems))
	for i, e := range elems {
		cv, err := s.Shape(e)
		if err != nil {
			return nil, err
		}
		children[i] = cv
	}

	homogeneous := true
	sameSize := true
	firstSid := children[0].Sid
	firstSize := children[0].Size
	for _, c := range children {
		if c.Sid != firstSid {
			homogeneous = false
		}
		if c.Size != firstSize {
			sameSize = false
		}
	}

	if homogeneous && sameSize && children[0].Fixed {
		sid := s.internShape(&Shape{
			Kind:        KindHomogeneousSizedList,
			Fixed:       false,
			DataSize:    -1,
			ElementSid:  firstSid,
			ElementSize: firstSize,
		})
		payload := encodeCountedFixed(children)
		return &ShapeValue{Sid: sid, Fixed: false, Size: len(payload), Data: payload}, nil
	}

	if homogeneous {
		sid := s.internShape(&Shape{
			Kind:       KindHomogeneousList,
			Fixed:      false,
			DataSize:   -1,
			ElementSid: firstSid,
		})
		payload := encodeCountedVariable(children)
		return &ShapeValue{Sid: sid, Fixed: false, Size: len(payload), Data: payload}, nil
	}

	sids := make([]int64, len(children))
	for i, c := range children {
		sids[i] = c.Sid
	}
	sid := s.internShape(&Shape{
		Kind:        KindList,
		Fixed:       false,
		DataSize:    -1,
		ElementSids: sids,
	})
	payload := encodeCountedVariable(children)
	return &ShapeValue{Sid: sid, Fixed: false, Size: len(payload), Data: payload}, nil
}

// shapeObject shapes an Array (record) value. Fields are sorted by
// (aid, sid); fixed-size fields are concatenated first, followed by an
// offset table and the variable-size fields, matching the shape's
// fixed/variable partition.
func (s *Shaper) shapeObject(v *jsonvalue.Value) (*ShapeValue, error) {
	entries := v.Object()

	type field struct {
		aid int64
		sv  *ShapeValue
	}
	fields := make([]field, 0, len(entries))
	for _, e := range entries {
		if e.Key == privateAttribute {
			continue
		}
		cv, err := s.Shape(e.Value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{aid: s.FindAttributeName(e.Key), sv: cv})
	}

	if len(fields) == 0 {
		return &ShapeValue{Sid: s.EmptyArraySid, Fixed: true, Size: 0}, nil
	}

	arrayFields := make([]ArrayField, len(fields))
	for i, f := range fields {
		arrayFields[i] = ArrayField{Aid: f.aid, Sid: f.sv.Sid}
	}
	sortFields(arrayFields)

	// Reorder fields to match the sorted descriptor order.
	sortedFields := make([]field, len(fields))
	for i, af := range arrayFields {
		for _, f := range fields {
			if f.aid == af.Aid && f.sv.Sid == af.Sid {
				sortedFields[i] = f
				break
			}
		}
	}

	fixedAll := true
	fixedSize := 0
	var fixedVals, varVals []*ShapeValue
	for _, f := range sortedFields {
		if f.sv.Fixed {
			fixedSize += f.sv.Size
			fixedVals = append(fixedVals, f.sv)
		} else {
			fixedAll = false
			varVals = append(varVals, f.sv)
		}
	}

	sid := s.internShape(&Shape{
		Kind:     KindArray,
		Fixed:    fixedAll,
		DataSize: fixedSize,
		Fields:   arrayFields,
	})

	payload := encodeArrayPayload(fixedVals, varVals)
	return &ShapeValue{Sid: sid, Fixed: fixedAll, Size: len(payload), Data: payload}, nil
}

// encodeCountedFixed writes [uint32 count][elem0][elem1]... for
// equal-size fixed elements; the reader derives each element's offset
// from its known size.
func encodeCountedFixed(children []*ShapeValue) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, uint32(len(children)))
	for _, c := range children {
		out = append(out, c.Data...)
	}
	return out
}

// encodeCountedVariable writes [uint32 count][uint32 offsets...][data...]
// so variable-size elements can be located without scanning.
func encodeCountedVariable(children []*ShapeValue) []byte {
	header := make([]byte, 4+4*len(children))
	binary.LittleEndian.PutUint32(header, uint32(len(children)))

	offset := uint32(0)
	var data []byte
	for i, c := range children {
		binary.LittleEndian.PutUint32(header[4+4*i:], offset)
		data = append(data, c.Data...)
		offset += uint32(len(c.Data))
	}
	return append(header, data...)
}

// encodeArrayPayload concatenates fixed field bytes, then a variable
// field offset table, then variable field bytes.
func encodeArrayPayload(fixed, variable []*ShapeValue) []byte {
	var out []byte
	for _, f := range fixed {
		out = append(out, f.Data...)
	}

	if len(variable) == 0 {
		return out
	}

	table := make([]byte, 4*len(variable))
	offset := uint32(0)
	var data []byte
	for i, v := range variable {
		binary.LittleEndian.PutUint32(table[4*i:], offset)
		data = append(data, v.Data...)
		offset += uint32(len(v.Data))
	}
	out = append(out, table...)
	out = append(out, data...)
	return out
}
