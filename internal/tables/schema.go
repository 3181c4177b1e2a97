package tables

import (
	"math"
	"strconv"
	"strings"
)

// CellType is the declared type of a cell in a table schema.
type CellType string

// Supported cell types.
const (
	TypeString  CellType = "string"
	TypeNumber  CellType = "number"
	TypeBoolean CellType = "boolean"
)

// CellSchema declares the type and optional default value of a cell.
// A nil Default means the cell is optional and left absent when unset.
type CellSchema struct {
	Type    CellType
	Default any
}

// TableSchema maps cell names to their declarations.
type TableSchema map[string]CellSchema

// Cells returns the cell names of the schema in sorted order.
func (ts TableSchema) Cells() []string {
	names := make([]string, 0, len(ts))
	for name := range ts {
		names = append(names, name)
	}
	sortStrings(names)
	return names
}

// normalize converts Go numeric types to float64 and rejects anything
// that is not a string, number or bool.
func normalize(v any) (any, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, false
		}
		return x, true
	case float32:
		return normalize(float64(x))
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return nil, false
}

// coerce converts v to the schema type, returning false when the value
// cannot be represented.
func coerce(v any, typ CellType) (any, bool) {
	v, ok := normalize(v)
	if !ok {
		return nil, false
	}

	switch typ {
	case TypeString:
		s, ok := v.(string)
		return s, ok
	case TypeNumber:
		switch x := v.(type) {
		case float64:
			return x, true
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, false
			}
			return f, true
		}
	case TypeBoolean:
		switch x := v.(type) {
		case bool:
			return x, true
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(x))
			if err != nil {
				return nil, false
			}
			return b, true
		}
	}
	return nil, false
}

// applyCell validates a single cell against the schema. The second return
// value reports whether the cell should be stored at all.
func (ts TableSchema) applyCell(name string, v any) (any, bool) {
	cs, known := ts[name]
	if !known {
		return nil, false
	}
	if c, ok := coerce(v, cs.Type); ok {
		return c, true
	}
	if cs.Default != nil {
		return cs.Default, true
	}
	return nil, false
}

// applyRow validates every cell in row and fills in defaults for
// missing cells.
func (ts TableSchema) applyRow(row Row) Row {
	out := make(Row, len(ts))
	for name, v := range row {
		if c, ok := ts.applyCell(name, v); ok {
			out[name] = c
		}
	}
	for name, cs := range ts {
		if _, ok := out[name]; !ok && cs.Default != nil {
			out[name] = cs.Default
		}
	}
	return out
}

// applyLoose is used for tables without a schema: any cell of a
// supported type is kept.
func applyLoose(row Row) Row {
	out := make(Row, len(row))
	for name, v := range row {
		if c, ok := normalize(v); ok {
			out[name] = c
		}
	}
	return out
}
