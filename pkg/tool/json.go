package tool

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// MarshalJSONMap converts a map into a datatypes.JSON column value.
func MarshalJSONMap(m map[string]any) (datatypes.JSON, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}
