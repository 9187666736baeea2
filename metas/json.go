package metas

import (
	"bytes"

	"github.com/goccy/go-json"
)

// ColumnType is the coarse type tag used in JSON output.
type ColumnType string

const (
	ColumnTypeString    ColumnType = "String"
	ColumnTypeInt       ColumnType = "Int"
	ColumnTypeBigInt    ColumnType = "BigInt"
	ColumnTypeBoolean   ColumnType = "Boolean"
	ColumnTypeFloat     ColumnType = "Float"
	ColumnTypeDouble    ColumnType = "Double"
	ColumnTypeDecimal   ColumnType = "Decimal"
	ColumnTypeChar      ColumnType = "Char"
	ColumnTypeTimestamp ColumnType = "Timestamp"
	ColumnTypeDate      ColumnType = "Date"
	ColumnTypeDateTime  ColumnType = "DateTime"
	ColumnTypeTime      ColumnType = "Time"
)

// ColumnTypeOf maps a data type onto the JSON tag set. Anything without a
// closer tag is reported as String.
func ColumnTypeOf(dt DataType) ColumnType {
	switch t := dt.(type) {
	case IntegerType:
		switch t.Kind {
		case TypeTinyInt:
			if t.Width != nil && *t.Width == 1 {
				return ColumnTypeBoolean
			}
			return ColumnTypeDecimal
		case TypeSmallInt:
			return ColumnTypeDecimal
		case TypeBigInt:
			return ColumnTypeBigInt
		case TypeBit:
			if t.Width == nil || *t.Width == 1 {
				return ColumnTypeBoolean
			}
			return ColumnTypeInt
		default:
			return ColumnTypeInt
		}
	case FixedPointType:
		switch t.Kind {
		case TypeFloat:
			return ColumnTypeFloat
		case TypeDouble:
			return ColumnTypeDouble
		default:
			return ColumnTypeDecimal
		}
	case TemporalType:
		switch t.Kind {
		case TypeTimestamp:
			return ColumnTypeTimestamp
		case TypeDatetime:
			return ColumnTypeDateTime
		case TypeDate:
			return ColumnTypeDate
		case TypeTime:
			return ColumnTypeTime
		default:
			return ColumnTypeInt
		}
	case StringType:
		if t.Kind == TypeChar {
			return ColumnTypeChar
		}
	}
	return ColumnTypeString
}

type jsonColumn struct {
	Name string     `json:"name"`
	Type ColumnType `json:"type"`
}

type jsonTable struct {
	Name    string       `json:"name"`
	Columns []jsonColumn `json:"columns"`
}

func (t *Table) MarshalJSON() ([]byte, error) {
	jt := jsonTable{Name: t.Name, Columns: make([]jsonColumn, 0, len(t.Columns))}
	for _, c := range t.Columns {
		jt.Columns = append(jt.Columns, jsonColumn{Name: c.Name, Type: ColumnTypeOf(c.DataType)})
	}
	return json.Marshal(jt)
}

// MarshalJSON writes the tables object in creation order.
func (d *Database) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	name, err := json.Marshal(d.Name)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`{"name":`)
	buf.Write(name)
	buf.WriteString(`,"tables":{`)
	for i, t := range d.Tables() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		value, err := t.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// DatabasesJSON renders the full-file output document.
func DatabasesJSON(dbs []*Database) ([]byte, error) {
	if dbs == nil {
		dbs = []*Database{}
	}
	return json.MarshalIndent(dbs, "", "  ")
}
