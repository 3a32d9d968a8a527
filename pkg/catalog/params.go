package catalog

import (
	"fmt"
	"path/filepath"

	"github.com/latticedb/lattice/pkg/jsonvalue"
)

const paramsFileName = "parameter.json"

// SaveParameters writes c's parameter file to disk using the canonical
// canonical schema: { cid, name, type, maximalSize, waitForSync,
// isSystem }. Written via jsonvalue.SaveToFile's atomic temp+rename
// protocol.
func SaveParameters(c *Collection) error {
	c.mu.RLock()
	zone := jsonvalue.NewZone(c.name)
	obj := zone.NewObject()
	_ = obj.Insert("cid", zone.NewNumber(float64(c.cid)))
	_ = obj.Insert("name", zone.NewString(c.name))
	_ = obj.Insert("type", zone.NewNumber(float64(c.typ)))
	_ = obj.Insert("maximalSize", zone.NewNumber(float64(c.maximalSize)))
	_ = obj.Insert("waitForSync", zone.NewBool(c.waitForSync))
	_ = obj.Insert("isSystem", zone.NewBool(c.isSystem))
	path := c.path
	c.mu.RUnlock()

	return jsonvalue.SaveToFile(filepath.Join(path, paramsFileName), obj)
}

// LoadParameters reads and validates a collection's parameter file. A
// missing or wrongly typed cid, name, or type is treated as a corrupt
// parameter file: the caller should call MarkCorrupted on the resulting
// collection rather than register it as Loaded. A missing or wrongly
// typed maximalSize, waitForSync, or isSystem is not an error; that
// value is returned as its zero value.
func LoadParameters(v *jsonvalue.Value) (cid int64, name string, typ CollectionType, maximalSize int64, waitForSync, isSystem bool, err error) {
	if v.Type() != jsonvalue.Object {
		return 0, "", 0, 0, false, false, fmt.Errorf("catalog: parameter file is not an object")
	}

	cidVal := v.Get("cid")
	nameVal := v.Get("name")
	typeVal := v.Get("type")
	maxSizeVal := v.Get("maximalSize")
	syncVal := v.Get("waitForSync")
	sysVal := v.Get("isSystem")

	if cidVal.Type() != jsonvalue.Number || nameVal.Type() != jsonvalue.String || typeVal.Type() != jsonvalue.Number {
		return 0, "", 0, 0, false, false, fmt.Errorf("catalog: parameter file missing required keys")
	}

	cid = int64(cidVal.AsNumber())
	name = nameVal.AsString()
	typ = CollectionType(int(typeVal.AsNumber()))

	if maxSizeVal.Type() == jsonvalue.Number {
		maximalSize = int64(maxSizeVal.AsNumber())
	}
	if syncVal.Type() == jsonvalue.Bool {
		waitForSync = syncVal.AsBool()
	}
	if sysVal.Type() == jsonvalue.Bool {
		isSystem = sysVal.AsBool()
	}

	return cid, name, typ, maximalSize, waitForSync, isSystem, nil
}
