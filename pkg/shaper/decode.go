package shaper

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/latticedb/lattice/pkg/jsonvalue"
)

// FromShape reconstructs a jsonvalue.Value from a shaped (sid, data)
// pair. The shape registered under sid is the sole authority on how to
// interpret data; an unknown sid or a payload too short for the
// declared layout is a shape mismatch.
func (s *Shaper) FromShape(zone *jsonvalue.Zone, sid int64, data []byte) (*jsonvalue.Value, error) {
	sh, ok := s.LookupShape(sid)
	if !ok {
		s.warnShapeMismatch(fmt.Sprintf("unknown sid %d", sid))
		return nil, fmt.Errorf("shaper: unknown sid %d", sid)
	}

	switch sh.Kind {
	case KindNull:
		return zone.NewNull(), nil

	case KindBoolean:
		if len(data) < 1 {
			return nil, s.shortPayload(sid, "boolean", 1, len(data))
		}
		return zone.NewBool(data[0] != 0), nil

	case KindNumber:
		if len(data) < 8 {
			return nil, s.shortPayload(sid, "number", 8, len(data))
		}
		bits := binary.LittleEndian.Uint64(data)
		return zone.NewNumber(math.Float64frombits(bits)), nil

	case KindShortString:
		if len(data) < sh.DataSize {
			return nil, s.shortPayload(sid, "short-string", sh.DataSize, len(data))
		}
		end := 0
		for end < sh.DataSize && data[end] != 0 {
			end++
		}
		return zone.NewString(string(data[:end])), nil

	case KindLongString:
		if len(data) < 4 {
			return nil, s.shortPayload(sid, "long-string", 4, len(data))
		}
		n := binary.LittleEndian.Uint32(data)
		if len(data) < int(4+n) {
			return nil, s.shortPayload(sid, "long-string body", int(4+n), len(data))
		}
		return zone.NewString(string(data[4 : 4+n])), nil

	case KindList:
		return s.decodeHeterogeneousList(zone, sh, data)

	case KindHomogeneousList:
		return s.decodeHomogeneousList(zone, sh, data)

	case KindHomogeneousSizedList:
		return s.decodeHomogeneousSizedList(zone, sh, data)

	case KindArray:
		return s.decodeArray(zone, sh, data)

	default:
		s.warnShapeMismatch(fmt.Sprintf("unhandled kind %s for sid %d", sh.Kind, sid))
		return nil, fmt.Errorf("shaper: unhandled kind %s", sh.Kind)
	}
}

func (s *Shaper) shortPayload(sid int64, what string, want, got int) error {
	s.warnShapeMismatch(fmt.Sprintf("%s payload too short for sid %d: want %d got %d", what, sid, want, got))
	return fmt.Errorf("shaper: %s payload too short for sid %d: want %d got %d", what, sid, want, got)
}

func (s *Shaper) decodeHeterogeneousList(zone *jsonvalue.Zone, sh *Shape, data []byte) (*jsonvalue.Value, error) {
	if len(sh.ElementSids) == 0 {
		return zone.NewList(), nil
	}
	if len(data) < 4 {
		return nil, s.shortPayload(sh.Sid, "list header", 4, len(data))
	}
	count := int(binary.LittleEndian.Uint32(data))
	offsetsEnd := 4 + 4*count
	if len(data) < offsetsEnd {
		return nil, s.shortPayload(sh.Sid, "list offsets", offsetsEnd, len(data))
	}
	body := data[offsetsEnd:]

	out := zone.NewList()
	for i := 0; i < count && i < len(sh.ElementSids); i++ {
		start := int(binary.LittleEndian.Uint32(data[4+4*i:]))
		var end int
		if i+1 < count {
			end = int(binary.LittleEndian.Uint32(data[4+4*(i+1):]))
		} else {
			end = len(body)
		}
		if start > len(body) || end > len(body) || start > end {
			return nil, s.shortPayload(sh.Sid, "list element", end, len(body))
		}
		elem, err := s.FromShape(zone, sh.ElementSids[i], body[start:end])
		if err != nil {
			return nil, err
		}
		if err := out.PushBack(elem); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Shaper) decodeHomogeneousList(zone *jsonvalue.Zone, sh *Shape, data []byte) (*jsonvalue.Value, error) {
	if len(data) < 4 {
		return nil, s.shortPayload(sh.Sid, "list header", 4, len(data))
	}
	count := int(binary.LittleEndian.Uint32(data))
	offsetsEnd := 4 + 4*count
	if len(data) < offsetsEnd {
		return nil, s.shortPayload(sh.Sid, "list offsets", offsetsEnd, len(data))
	}
	body := data[offsetsEnd:]

	out := zone.NewList()
	for i := 0; i < count; i++ {
		start := int(binary.LittleEndian.Uint32(data[4+4*i:]))
		var end int
		if i+1 < count {
			end = int(binary.LittleEndian.Uint32(data[4+4*(i+1):]))
		} else {
			end = len(body)
		}
		if start > len(body) || end > len(body) || start > end {
			return nil, s.shortPayload(sh.Sid, "list element", end, len(body))
		}
		elem, err := s.FromShape(zone, sh.ElementSid, body[start:end])
		if err != nil {
			return nil, err
		}
		if err := out.PushBack(elem); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Shaper) decodeHomogeneousSizedList(zone *jsonvalue.Zone, sh *Shape, data []byte) (*jsonvalue.Value, error) {
	if len(data) < 4 {
		return nil, s.shortPayload(sh.Sid, "list header", 4, len(data))
	}
	count := int(binary.LittleEndian.Uint32(data))
	need := 4 + count*sh.ElementSize
	if len(data) < need {
		return nil, s.shortPayload(sh.Sid, "list body", need, len(data))
	}

	out := zone.NewList()
	for i := 0; i < count; i++ {
		start := 4 + i*sh.ElementSize
		elem, err := s.FromShape(zone, sh.ElementSid, data[start:start+sh.ElementSize])
		if err != nil {
			return nil, err
		}
		if err := out.PushBack(elem); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Shaper) decodeArray(zone *jsonvalue.Zone, sh *Shape, data []byte) (*jsonvalue.Value, error) {
	out := zone.NewObject()
	if len(sh.Fields) == 0 {
		return out, nil
	}

	var fixedFields, varFields []ArrayField
	for _, f := range sh.Fields {
		fsh, ok := s.LookupShape(f.Sid)
		if !ok {
			return nil, s.shortPayload(sh.Sid, "field shape lookup", 0, 0)
		}
		if fsh.Fixed {
			fixedFields = append(fixedFields, f)
		} else {
			varFields = append(varFields, f)
		}
	}

	offset := 0
	for _, f := range fixedFields {
		fsh, _ := s.LookupShape(f.Sid)
		if offset+fsh.DataSize > len(data) {
			return nil, s.shortPayload(sh.Sid, "fixed field", offset+fsh.DataSize, len(data))
		}
		elem, err := s.FromShape(zone, f.Sid, data[offset:offset+fsh.DataSize])
		if err != nil {
			return nil, err
		}
		name, _ := s.LookupAttributeID(f.Aid)
		if err := out.Insert(name, elem); err != nil {
			return nil, err
		}
		offset += fsh.DataSize
	}

	if len(varFields) == 0 {
		return out, nil
	}

	tableEnd := offset + 4*len(varFields)
	if tableEnd > len(data) {
		return nil, s.shortPayload(sh.Sid, "variable field table", tableEnd, len(data))
	}
	body := data[tableEnd:]

	for i, f := range varFields {
		start := int(binary.LittleEndian.Uint32(data[offset+4*i:]))
		var end int
		if i+1 < len(varFields) {
			end = int(binary.LittleEndian.Uint32(data[offset+4*(i+1):]))
		} else {
			end = len(body)
		}
		if start > len(body) || end > len(body) || start > end {
			return nil, s.shortPayload(sh.Sid, "variable field", end, len(body))
		}
		elem, err := s.FromShape(zone, f.Sid, body[start:end])
		if err != nil {
			return nil, err
		}
		name, _ := s.LookupAttributeID(f.Aid)
		if err := out.Insert(name, elem); err != nil {
			return nil, err
		}
	}

	return out, nil
}
