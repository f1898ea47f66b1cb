// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package schema

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Parse builds a Schema from its human-authored JSON form (spec.md
// §6.1). It validates the result with Validate before returning it.
func Parse(data []byte) (*Schema, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalidf("", fmt.Sprintf("invalid JSON: %v", err))
	}
	s := &Schema{}
	if _, err := parseNode(s, raw, "root"); err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

func parseNode(s *Schema, raw any, path string) (int, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return -1, invalidf(path, "schema node must be a JSON object")
	}
	typ, _ := obj["type"].(string)
	if typ == "" {
		return -1, invalidf(path, "missing required \"type\"")
	}

	idx := len(s.Nodes)
	s.Nodes = append(s.Nodes, Node{}) // reserve the index before recursing into children
	n := Node{}

	switch typ {
	case "int8":
		n.Kind, n.IntWidth, n.IntSigned, n.Sortable = KindInt, 1, true, true
	case "int16":
		n.Kind, n.IntWidth, n.IntSigned, n.Sortable = KindInt, 2, true, true
	case "int32":
		n.Kind, n.IntWidth, n.IntSigned, n.Sortable = KindInt, 4, true, true
	case "int64":
		n.Kind, n.IntWidth, n.IntSigned, n.Sortable = KindInt, 8, true, true
	case "uint8":
		n.Kind, n.IntWidth, n.IntSigned, n.Sortable = KindInt, 1, false, true
	case "uint16":
		n.Kind, n.IntWidth, n.IntSigned, n.Sortable = KindInt, 2, false, true
	case "uint32":
		n.Kind, n.IntWidth, n.IntSigned, n.Sortable = KindInt, 4, false, true
	case "uint64":
		n.Kind, n.IntWidth, n.IntSigned, n.Sortable = KindInt, 8, false, true
	case "float":
		n.Kind, n.FloatWidth, n.Sortable = KindFloat, 4, true
	case "double":
		n.Kind, n.FloatWidth, n.Sortable = KindFloat, 8, true
	case "bool":
		n.Kind, n.Sortable = KindBool, true
	case "string":
		n.Kind = KindString
		size, err := parseSize(obj, path)
		if err != nil {
			return -1, err
		}
		n.Size = size
		n.Sortable = size > 0
	case "bytes":
		n.Kind = KindBytes
		size, err := parseSize(obj, path)
		if err != nil {
			return -1, err
		}
		n.Size = size
		n.Sortable = size > 0
	case "dec", "decimal":
		n.Kind, n.Sortable = KindDecimal, true
		expF, ok := obj["exp"].(float64)
		if !ok {
			return -1, invalidf(path, "decimal requires integer \"exp\"")
		}
		if expF < 0 || expF > 255 {
			return -1, invalidf(path, "decimal \"exp\" %v out of range 0..=255", expF)
		}
		n.Exp = uint8(expF)
	case "uuid":
		n.Kind, n.Sortable = KindUUID, true
	case "ulid":
		n.Kind, n.Sortable = KindULID, true
	case "date":
		n.Kind, n.Sortable = KindDate, true
	case "geo4":
		n.Kind, n.GeoPrecision, n.Sortable = KindGeo, 4, true
	case "geo8":
		n.Kind, n.GeoPrecision, n.Sortable = KindGeo, 8, true
	case "geo16":
		n.Kind, n.GeoPrecision, n.Sortable = KindGeo, 16, true
	case "option", "enum":
		n.Kind, n.Sortable = KindOption, true
		choices, err := parseChoices(obj, path)
		if err != nil {
			return -1, err
		}
		n.Choices = choices
	case "table":
		n.Kind = KindTable
		cols, ok := obj["columns"].([]any)
		if !ok {
			return -1, invalidf(path, "table requires \"columns\"")
		}
		if len(cols) > maxColumns {
			return -1, invalidf(path, "table has %d columns, max is %d", len(cols), maxColumns)
		}
		for i, raw := range cols {
			pair, ok := raw.([]any)
			if !ok || len(pair) != 2 {
				return -1, invalidf(path, "columns[%d] must be [name, subschema]", i)
			}
			name, ok := pair[0].(string)
			if !ok {
				return -1, invalidf(path, "columns[%d] name must be a string", i)
			}
			childIdx, err := parseNode(s, pair[1], fmt.Sprintf("%s.columns[%d]", path, i))
			if err != nil {
				return -1, err
			}
			n.Columns = append(n.Columns, Column{Name: name, Child: childIdx})
		}
	case "tuple":
		n.Kind = KindTuple
		if sorted, ok := obj["sorted"].(bool); ok {
			n.TupleSorted = sorted
		}
		values, ok := obj["values"].([]any)
		if !ok {
			return -1, invalidf(path, "tuple requires \"values\"")
		}
		for i, raw := range values {
			childIdx, err := parseNode(s, raw, fmt.Sprintf("%s.values[%d]", path, i))
			if err != nil {
				return -1, err
			}
			n.Values = append(n.Values, childIdx)
		}
	case "list":
		n.Kind = KindList
		of, ok := obj["of"]
		if !ok {
			return -1, invalidf(path, "list requires \"of\"")
		}
		childIdx, err := parseNode(s, of, path+".of")
		if err != nil {
			return -1, err
		}
		n.Of = childIdx
	case "map":
		n.Kind = KindMap
		value, ok := obj["value"]
		if !ok {
			return -1, invalidf(path, "map requires \"value\"")
		}
		childIdx, err := parseNode(s, value, path+".value")
		if err != nil {
			return -1, err
		}
		n.Value = childIdx
	default:
		return -1, invalidf(path, "unknown type %q", typ)
	}

	if raw, ok := obj["default"]; ok {
		def, err := decodeDefault(n, raw, path)
		if err != nil {
			return -1, err
		}
		n.Default = def
	}

	s.Nodes[idx] = n
	return idx, nil
}

func parseSize(obj map[string]any, path string) (uint16, error) {
	raw, ok := obj["size"]
	if !ok {
		return 0, nil
	}
	f, ok := raw.(float64)
	if !ok || f < 0 || f > 65535 {
		return 0, invalidf(path, "\"size\" must be an integer in 0..=65535")
	}
	return uint16(f), nil
}

func parseChoices(obj map[string]any, path string) ([]string, error) {
	raw, ok := obj["choices"].([]any)
	if !ok {
		return nil, invalidf(path, "option/enum requires \"choices\"")
	}
	out := make([]string, 0, len(raw))
	for i, c := range raw {
		str, ok := c.(string)
		if !ok {
			return nil, invalidf(path, "choices[%d] must be a string", i)
		}
		out = append(out, str)
	}
	return out, nil
}

func decodeDefault(n Node, raw any, path string) (any, error) {
	switch n.Kind {
	case KindInt:
		f, ok := raw.(float64)
		if !ok {
			return nil, invalidf(path, "default must be a number")
		}
		return int64(f), nil
	case KindFloat:
		f, ok := raw.(float64)
		if !ok {
			return nil, invalidf(path, "default must be a number")
		}
		return f, nil
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, invalidf(path, "default must be a bool")
		}
		return b, nil
	case KindDecimal:
		f, ok := raw.(float64)
		if !ok {
			return nil, invalidf(path, "decimal default must be a number")
		}
		return Decimal{Num: decimalNum(f, n.Exp), Exp: n.Exp}, nil
	case KindUUID:
		str, ok := raw.(string)
		if !ok {
			return nil, invalidf(path, "default must be a uuid string")
		}
		id, err := uuid.Parse(str)
		if err != nil {
			return nil, invalidf(path, "invalid uuid default: %v", err)
		}
		return id, nil
	case KindULID:
		str, ok := raw.(string)
		if !ok {
			return nil, invalidf(path, "default must be a ulid string")
		}
		id, err := ulid.ParseStrict(str)
		if err != nil {
			return nil, invalidf(path, "invalid ulid default: %v", err)
		}
		return id, nil
	case KindDate:
		f, ok := raw.(float64)
		if !ok {
			return nil, invalidf(path, "date default must be a number of milliseconds")
		}
		return uint64(f), nil
	case KindGeo:
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, invalidf(path, "geo default must be {\"lat\":_,\"lon\":_}")
		}
		lat, _ := obj["lat"].(float64)
		lon, _ := obj["lon"].(float64)
		return GeoPoint{Lat: lat, Lon: lon}, nil
	case KindBytes:
		arr, ok := raw.([]any)
		if !ok {
			return nil, invalidf(path, "bytes default must be [u8]")
		}
		out := make([]byte, len(arr))
		for i, v := range arr {
			f, ok := v.(float64)
			if !ok || f < 0 || f > 255 {
				return nil, invalidf(path, "bytes default[%d] must be in 0..=255", i)
			}
			out[i] = byte(f)
		}
		return out, nil
	case KindString:
		str, ok := raw.(string)
		if !ok {
			return nil, invalidf(path, "string default must be a string")
		}
		return str, nil
	default:
		return nil, invalidf(path, "type %s does not support a default", n.Kind)
	}
}

// decimalNum renders a float64 default into the fixed-point Num at the
// schema's declared Exp, matching seed scenario E4 (203.293 at exp=3
// yields num=203293).
func decimalNum(v float64, exp uint8) int64 {
	scale := 1.0
	for i := uint8(0); i < exp; i++ {
		scale *= 10
	}
	return int64(v*scale + sign(v)*0.5)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// ToJSON re-emits s in its human-authored JSON form. Parsing the result
// with Parse yields a structurally equivalent Schema (spec.md §6.2
// round-trip invariant, which this repo also holds for the JSON form).
func (s *Schema) ToJSON() ([]byte, error) {
	if len(s.Nodes) == 0 {
		return nil, invalidf("", "schema has no nodes")
	}
	v, err := nodeToJSON(s, 0)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func nodeToJSON(s *Schema, idx int) (map[string]any, error) {
	n := &s.Nodes[idx]
	m := map[string]any{}

	switch n.Kind {
	case KindInt:
		m["type"] = intTypeName(n.IntWidth, n.IntSigned)
	case KindFloat:
		if n.FloatWidth == 4 {
			m["type"] = "float"
		} else {
			m["type"] = "double"
		}
	case KindBool:
		m["type"] = "bool"
	case KindDecimal:
		m["type"] = "decimal"
		m["exp"] = n.Exp
	case KindUUID:
		m["type"] = "uuid"
	case KindULID:
		m["type"] = "ulid"
	case KindDate:
		m["type"] = "date"
	case KindGeo:
		m["type"] = fmt.Sprintf("geo%d", n.GeoPrecision)
	case KindBytes:
		m["type"] = "bytes"
		if n.Size > 0 {
			m["size"] = n.Size
		}
	case KindString:
		m["type"] = "string"
		if n.Size > 0 {
			m["size"] = n.Size
		}
	case KindOption:
		m["type"] = "option"
		m["choices"] = n.Choices
	case KindTable:
		m["type"] = "table"
		cols := make([]any, len(n.Columns))
		for i, c := range n.Columns {
			child, err := nodeToJSON(s, c.Child)
			if err != nil {
				return nil, err
			}
			cols[i] = []any{c.Name, child}
		}
		m["columns"] = cols
	case KindTuple:
		m["type"] = "tuple"
		if n.TupleSorted {
			m["sorted"] = true
		}
		values := make([]any, len(n.Values))
		for i, v := range n.Values {
			child, err := nodeToJSON(s, v)
			if err != nil {
				return nil, err
			}
			values[i] = child
		}
		m["values"] = values
	case KindList:
		m["type"] = "list"
		child, err := nodeToJSON(s, n.Of)
		if err != nil {
			return nil, err
		}
		m["of"] = child
	case KindMap:
		m["type"] = "map"
		child, err := nodeToJSON(s, n.Value)
		if err != nil {
			return nil, err
		}
		m["value"] = child
	default:
		return nil, invalidf(fmt.Sprintf("nodes[%d]", idx), "unknown type key %d", n.Kind)
	}

	if n.Default != nil {
		m["default"] = defaultToJSON(n.Default)
	}
	return m, nil
}

func intTypeName(width uint8, signed bool) string {
	prefix := "int"
	if !signed {
		prefix = "uint"
	}
	return fmt.Sprintf("%s%d", prefix, width*8)
}

func defaultToJSON(d any) any {
	switch v := d.(type) {
	case Decimal:
		scale := 1.0
		for i := uint8(0); i < v.Exp; i++ {
			scale *= 10
		}
		return float64(v.Num) / scale
	case uuid.UUID:
		return v.String()
	case ulid.ULID:
		return v.String()
	case GeoPoint:
		return map[string]any{"lat": v.Lat, "lon": v.Lon}
	default:
		return v
	}
}
