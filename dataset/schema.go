// Package dataset describes the ingested data's shape. The command
// interpreter reads column descriptors to ground prompts; it never touches
// row data.
package dataset

// ColumnType is the declared type of a column.
type ColumnType string

const (
	ColumnString  ColumnType = "string"
	ColumnNumber  ColumnType = "number"
	ColumnDate    ColumnType = "date"
	ColumnBoolean ColumnType = "boolean"
)

// Column describes one column of the underlying data.
type Column struct {
	Name        string     `json:"name"`
	Type        ColumnType `json:"type"`
	IsMetric    bool       `json:"isMetric"`
	IsDimension bool       `json:"isDimension"`
}

// Schema is the ordered column list plus the row count. Read-only to the
// interpreter core.
type Schema struct {
	Columns  []Column `json:"columns"`
	RowCount int      `json:"rowCount"`
}

// ColumnNames returns the column names in schema order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}
