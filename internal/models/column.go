package models

// Column names one of the two task collections.
type Column string

const (
	ColumnSignal Column = "signal"
	ColumnNoise  Column = "noise"
)

// Columns lists every recognized column in display order.
var Columns = []Column{ColumnSignal, ColumnNoise}

// ParseColumn converts a raw name into a Column.
// The second return value is false if the name is not recognized.
func ParseColumn(name string) (Column, bool) {
	c := Column(name)
	return c, c.Valid()
}

// Valid returns true if c is one of the recognized columns.
func (c Column) Valid() bool {
	return c == ColumnSignal || c == ColumnNoise
}

func (c Column) String() string {
	return string(c)
}
