package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeFields(t *testing.T) {
	in := map[string]any{
		"nombre":       "Laptop X",
		"estado":       "Disponible",
		"fechaIngreso": time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		"historial": []any{
			map[string]any{"accion": "creado", "usuario": "u1"},
		},
	}

	data, err := EncodeFields(in)
	require.NoError(t, err)

	out, err := DecodeFields(data)
	require.NoError(t, err)

	assert.Equal(t, "Laptop X", out["nombre"])
	assert.Equal(t, "Disponible", out["estado"])

	got, ok := out["fechaIngreso"].(time.Time)
	require.True(t, ok, "fechaIngreso must decode back to time.Time")
	assert.True(t, got.Equal(in["fechaIngreso"].(time.Time)))

	hist, ok := out["historial"].([]any)
	require.True(t, ok)
	require.Len(t, hist, 1)
}

func TestDecodeFieldsRejectsGarbage(t *testing.T) {
	_, err := DecodeFields([]byte("{not json"))
	require.Error(t, err)
}

func TestDecodeFieldsLeavesUntaggedMapsAlone(t *testing.T) {
	out, err := DecodeFields([]byte(`{"meta":{"a":1}}`))
	require.NoError(t, err)
	_, isMap := out["meta"].(map[string]any)
	assert.True(t, isMap)
}
