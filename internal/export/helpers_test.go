package export_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// exportedIDs reads accounts_ids back out of a recorded payload.
func exportedIDs(t *testing.T, payload any) []int64 {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var body struct {
		IDs  []int64 `json:"accounts_ids"`
		Type string  `json:"export_type"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.NotEmpty(t, body.Type)
	return body.IDs
}
