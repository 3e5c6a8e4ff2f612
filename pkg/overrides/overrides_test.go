package overrides

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relayops/fleetbridge/pkg/inventory"
	"github.com/relayops/fleetbridge/pkg/resolve"
)

func TestLoadExceptionsMissingFile(t *testing.T) {
	rules, err := LoadExceptions(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestUpsertExceptionInsertAndUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "exceptions.yaml")
	customers := []inventory.TargetCustomer{{ID: 19952169, Description: "Usina - Conta Especial"}}

	err := UpsertException(path, resolve.ExceptionRule{
		Document:        "25.729.197/0001-36",
		DepartmentMatch: "Usina",
		CustomerID:      19952169,
	}, customers)
	require.NoError(t, err)

	rules, err := LoadExceptions(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Usina - Conta Especial", rules[0].CustomerDescription)

	// Same (document, department) key, different formatting: must overwrite,
	// not append.
	err = UpsertException(path, resolve.ExceptionRule{
		Document:        "25729197000136",
		DepartmentMatch: " USINA ",
		CustomerID:      777,
	}, nil)
	require.NoError(t, err)

	rules, err = LoadExceptions(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 777, rules[0].CustomerID)

	// Different department: new rule.
	err = UpsertException(path, resolve.ExceptionRule{
		Document:        "25729197000136",
		DepartmentMatch: "Matriz",
		CustomerID:      888,
	}, nil)
	require.NoError(t, err)

	rules, err = LoadExceptions(path)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestUpsertExceptionRejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exceptions.yaml")

	err := UpsertException(path, resolve.ExceptionRule{Document: "no digits", DepartmentMatch: "X", CustomerID: 1}, nil)
	assert.Error(t, err)

	err = UpsertException(path, resolve.ExceptionRule{Document: "123", DepartmentMatch: "", CustomerID: 1}, nil)
	assert.Error(t, err)

	err = UpsertException(path, resolve.ExceptionRule{Document: "123", DepartmentMatch: "X"}, nil)
	assert.Error(t, err)
}

func TestManualFlagToggle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.yaml")

	require.NoError(t, SetManualFlag(path, "25.729.197/0001-36", true))
	require.NoError(t, SetManualFlag(path, "11222333000181", true))

	flags, err := LoadManualFlags(path)
	require.NoError(t, err)
	assert.True(t, flags.Contains("25729197000136"))
	assert.True(t, flags.Contains("11222333000181"))
	assert.Len(t, flags, 2)

	require.NoError(t, SetManualFlag(path, "25729197000136", false))

	flags, err = LoadManualFlags(path)
	require.NoError(t, err)
	assert.False(t, flags.Contains("25729197000136"))
	assert.Len(t, flags, 1)
}

func TestSetManualFlagRejectsEmptyDocument(t *testing.T) {
	err := SetManualFlag(filepath.Join(t.TempDir(), "manual.yaml"), "---", true)
	assert.Error(t, err)
}

func TestLoadManualFlagsNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.yaml")

	// Duplicated entries under different formatting collapse to one.
	require.NoError(t, SetManualFlag(path, "25.729.197/0001-36", true))
	require.NoError(t, SetManualFlag(path, "25729197000136", true))

	flags, err := LoadManualFlags(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"25729197000136"}, flags.List())
}
