package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestPolicy_Allows(t *testing.T) {
	assert.True(t, NewPolicy(true).Allows("any"))
	scoped := NewPolicy(false, "g1", "g2")
	assert.True(t, scoped.Allows("g1"))
	assert.False(t, scoped.Allows("g3"))
	assert.False(t, Policy{}.Allows(""))
}

func TestTable_Lookup(t *testing.T) {
	tbl := NewTable(map[string]Policy{"Key-A": NewPolicy(true)})

	_, ok := tbl.Lookup("Key-A")
	assert.True(t, ok)
	_, ok = tbl.Lookup("key-a")
	assert.False(t, ok, "keys are case-sensitive")
	_, ok = tbl.Lookup("")
	assert.False(t, ok)

	var nilTable *Table
	_, ok = nilTable.Lookup("Key-A")
	assert.False(t, ok)
	assert.Equal(t, 0, nilTable.Len())
}

func TestLoad_YAML_PreservesKeyCase(t *testing.T) {
	p := writeFile(t, "policy.yaml", `
keys:
  - key: "AbC123"
    global: true
  - key: "Scoped"
    guilds: ["111", "222"]
`)
	tbl, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	pol, ok := tbl.Lookup("AbC123")
	require.True(t, ok)
	assert.True(t, pol.Global)

	pol, ok = tbl.Lookup("Scoped")
	require.True(t, ok)
	assert.True(t, pol.Allows("222"))
	assert.False(t, pol.Allows("333"))

	global, scoped := tbl.Summary()
	assert.Equal(t, 1, global)
	assert.Equal(t, 1, scoped)
}

func TestLoad_JSON(t *testing.T) {
	p := writeFile(t, "policy.json", `{"keys":[{"key":"k1","guilds":["g1"]}]}`)
	tbl, err := Load(p)
	require.NoError(t, err)
	pol, ok := tbl.Lookup("k1")
	require.True(t, ok)
	assert.True(t, pol.Allows("g1"))
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"empty key": "keys:\n  - key: \"\"\n    global: true\n",
		"duplicate": "keys:\n  - key: a\n    global: true\n  - key: a\n    global: true\n",
		"no scope":  "keys:\n  - key: a\n",
		"no keys":   "other: 1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "policy.yaml", body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
