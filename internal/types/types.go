package types

// TableDef describes a table the migration may need to create.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

type ColumnDef struct {
	Name             string
	Type             string
	Nullable         bool
	Default          string
	IsPrimary        bool
	IsUnique         bool
	IsAutoIncrement  bool
	ForeignKeyTable  string
	ForeignKeyColumn string
	OnDeleteAction   string
}

// ForeignKeyDef describes a named foreign key constraint added after the
// referencing column already exists.
type ForeignKeyDef struct {
	Name           string
	Column         string
	RefTable       string
	RefColumn      string
	OnDeleteAction string
}

type BackupData struct {
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Tables    map[string]interface{} `json:"tables"`
	Comment   string                 `json:"comment"`
}
