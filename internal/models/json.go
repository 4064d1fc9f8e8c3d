package models

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a wrapper around gorm.io/datatypes.JSON to allow for custom data type mapping
type JSON struct {
	datatypes.JSON
}

// JSONStrings stores a list of strings as a JSON array column
func JSONStrings(values []string) JSON {
	if values == nil {
		values = []string{}
	}
	raw, _ := json.Marshal(values)
	return JSON{JSON: datatypes.JSON(raw)}
}

// Strings decodes a JSON array column, an empty or malformed column yields nil
func (j JSON) Strings() []string {
	if len(j.JSON) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(j.JSON, &out); err != nil {
		return nil
	}
	return out
}

// MarshalJSON renders the raw column, null when empty
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j.JSON) == 0 {
		return []byte("null"), nil
	}
	return j.JSON.MarshalJSON()
}

// Value promotes the embedded JSON's Value method
func (j JSON) Value() (driver.Value, error) {
	return j.JSON.Value()
}

// Scan promotes the embedded JSON's Scan method
func (j *JSON) Scan(value interface{}) error {
	return j.JSON.Scan(value)
}

// GormDBDataType ensures the correct data type is used for each database driver.
// This resolves the issue where MSSQL does not support the 'json' data type.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
