package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocIsRegisteredAndValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		Paths map[string]interface{} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	for _, path := range []string{"/api/v1/planner/recommendations", "/api/v1/planner/simulate", "/api/v1/planner/recommendations/export", "/api/v1/planner/runs", "/ready"} {
		assert.Contains(t, doc.Paths, path)
	}
}
