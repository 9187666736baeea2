package metas

import (
	"fmt"
	"strings"
)

type TypeKind string

const (
	TypeTinyInt   TypeKind = "tinyint"
	TypeSmallInt  TypeKind = "smallint"
	TypeMediumInt TypeKind = "mediumint"
	TypeInt       TypeKind = "int"
	TypeBigInt    TypeKind = "bigint"
	TypeBit       TypeKind = "bit"

	TypeDecimal TypeKind = "decimal"
	TypeFloat   TypeKind = "float"
	TypeDouble  TypeKind = "double"

	TypeDate      TypeKind = "date"
	TypeDatetime  TypeKind = "datetime"
	TypeTimestamp TypeKind = "timestamp"
	TypeTime      TypeKind = "time"
	TypeYear      TypeKind = "year"

	TypeChar      TypeKind = "char"
	TypeVarchar   TypeKind = "varchar"
	TypeBinary    TypeKind = "binary"
	TypeVarbinary TypeKind = "varbinary"

	TypeTinyBlob   TypeKind = "tinyblob"
	TypeBlob       TypeKind = "blob"
	TypeMediumBlob TypeKind = "mediumblob"
	TypeLongBlob   TypeKind = "longblob"
	TypeTinyText   TypeKind = "tinytext"
	TypeText       TypeKind = "text"
	TypeMediumText TypeKind = "mediumtext"
	TypeLongText   TypeKind = "longtext"

	TypeEnum TypeKind = "enum"
	TypeSet  TypeKind = "set"

	TypeGeometry           TypeKind = "geometry"
	TypePoint              TypeKind = "point"
	TypeLineString         TypeKind = "linestring"
	TypePolygon            TypeKind = "polygon"
	TypeMultiPoint         TypeKind = "multipoint"
	TypeMultiLineString    TypeKind = "multilinestring"
	TypeMultiPolygon       TypeKind = "multipolygon"
	TypeGeometryCollection TypeKind = "geometrycollection"

	TypeJSON TypeKind = "json"
)

// DataType is implemented by one struct per type family.
type DataType interface {
	TypeKind() TypeKind
	// SQL is the canonical column type text, e.g. "varchar(255)".
	SQL() string
	dataType()
}

// IntegerType covers tinyint through bigint and bit.
type IntegerType struct {
	Kind     TypeKind
	Width    *uint32
	Unsigned bool
	Zerofill bool
}

type Precision struct {
	Precision uint32
	Scale     uint32
}

// FixedPointType covers decimal, float and double. Precision and scale are
// either both present or both absent.
type FixedPointType struct {
	Kind      TypeKind
	Precision *Precision
	Unsigned  bool
}

// TemporalType covers date, datetime, timestamp, time and year. Date never
// carries a fractional seconds precision.
type TemporalType struct {
	Kind TypeKind
	Fsp  *uint32
}

// StringType covers char, varchar, binary and varbinary.
type StringType struct {
	Kind TypeKind
	Size uint32
}

// LobType covers the unsized blob and text tiers.
type LobType struct {
	Kind TypeKind
}

type EnumType struct {
	Kind   TypeKind // enum or set
	Values []string
}

type SpatialType struct {
	Kind TypeKind
}

type JSONType struct{}

func (t IntegerType) TypeKind() TypeKind    { return t.Kind }
func (t FixedPointType) TypeKind() TypeKind { return t.Kind }
func (t TemporalType) TypeKind() TypeKind   { return t.Kind }
func (t StringType) TypeKind() TypeKind     { return t.Kind }
func (t LobType) TypeKind() TypeKind        { return t.Kind }
func (t EnumType) TypeKind() TypeKind       { return t.Kind }
func (t SpatialType) TypeKind() TypeKind    { return t.Kind }
func (t JSONType) TypeKind() TypeKind       { return TypeJSON }

func (IntegerType) dataType()    {}
func (FixedPointType) dataType() {}
func (TemporalType) dataType()   {}
func (StringType) dataType()     {}
func (LobType) dataType()        {}
func (EnumType) dataType()       {}
func (SpatialType) dataType()    {}
func (JSONType) dataType()       {}

func (t IntegerType) SQL() string {
	s := string(t.Kind)
	if t.Width != nil {
		s += fmt.Sprintf("(%d)", *t.Width)
	}
	if t.Unsigned {
		s += " unsigned"
	}
	if t.Zerofill {
		s += " zerofill"
	}
	return s
}

func (t FixedPointType) SQL() string {
	s := string(t.Kind)
	if t.Precision != nil {
		s += fmt.Sprintf("(%d,%d)", t.Precision.Precision, t.Precision.Scale)
	}
	if t.Unsigned {
		s += " unsigned"
	}
	return s
}

func (t TemporalType) SQL() string {
	if t.Fsp != nil && t.Kind != TypeDate {
		return fmt.Sprintf("%s(%d)", t.Kind, *t.Fsp)
	}
	return string(t.Kind)
}

func (t StringType) SQL() string {
	return fmt.Sprintf("%s(%d)", t.Kind, t.Size)
}

func (t LobType) SQL() string     { return string(t.Kind) }
func (t SpatialType) SQL() string { return string(t.Kind) }
func (t JSONType) SQL() string    { return string(TypeJSON) }

func (t EnumType) SQL() string {
	values := make([]string, len(t.Values))
	for i, v := range t.Values {
		values[i] = TextValue(v).SQL()
	}
	return fmt.Sprintf("%s(%s)", t.Kind, strings.Join(values, ","))
}
