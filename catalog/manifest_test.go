package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/scriptbridge/scriptgraph"
)

const manifestJSON = `{
  "types": [
    {"ref": {"name": "Actor", "path": "/types/Actor"}},
    {"ref": {"name": "Enemy", "path": "/game/Enemy"}, "parent": "Actor"}
  ],
  "functions": [
    {
      "display_name": "Print String",
      "category": "Utilities|String",
      "name": "PrintString",
      "owner": {"name": "SystemLibrary", "path": "/types/SystemLibrary"},
      "is_static": true,
      "params": [
        {"name": "in string", "type": {"category": "string"}, "direction": "input"}
      ]
    }
  ],
  "variables": [
    {
      "display_name": "Health",
      "name": "Health",
      "declared_type": {"category": "float"},
      "owner": {"name": "Enemy", "path": "/game/Enemy"}
    },
    {
      "display_name": "MaxHealth",
      "name": "MaxHealth",
      "declared_type": {"category": "float"},
      "owner": {"name": "Enemy", "path": "/game/Enemy"},
      "read_only": true
    }
  ],
  "casts": [
    {"target": {"name": "Enemy", "path": "/game/Enemy"}}
  ],
  "events": [
    {
      "display_name": "OnHit",
      "owner": {"name": "Actor", "path": "/types/Actor"},
      "params": [
        {"name": "Other", "type": {"category": "object"}, "direction": "output"}
      ]
    }
  ]
}`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadManifestAndApply(t *testing.T) {
	m, err := LoadManifest(writeManifest(t, manifestJSON))
	require.NoError(t, err)

	r := NewRegistry()
	ts := NewTypeSystem()
	require.NoError(t, m.Apply(r, ts))

	// 1 function + get/set Health + get-only MaxHealth + 1 cast + 1 event
	assert.Equal(t, 6, r.Len())

	td, err := ts.Resolve("Enemy")
	require.NoError(t, err)
	assert.Equal(t, "/game/Enemy", td.Ref.Path)
	assert.True(t, ts.IsA(td.Ref, scriptgraph.TypeRef{Name: "Actor", Path: "/types/Actor"}))

	var setters, getters int
	r.Walk(func(e Entry) bool {
		switch e.Spec().Kind {
		case scriptgraph.KindVariableSet:
			setters++
		case scriptgraph.KindVariableGet:
			getters++
		}
		return true
	})
	assert.Equal(t, 2, getters)
	assert.Equal(t, 1, setters, "read_only variables register no setter")
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadManifestMalformed(t *testing.T) {
	_, err := LoadManifest(writeManifest(t, "{not json"))
	assert.Error(t, err)
}
