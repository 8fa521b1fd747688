package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PASETO_SECRET_KEY", testKey)
	t.Setenv("STORE_DRIVER", "")
	os.Unsetenv("STORE_DRIVER")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.False(t, cfg.Production())
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"short key", map[string]string{"PASETO_SECRET_KEY": "short"}},
		{"unknown driver", map[string]string{"PASETO_SECRET_KEY": testKey, "STORE_DRIVER": "redis"}},
		{"atlas without uri", map[string]string{"PASETO_SECRET_KEY": testKey, "STORE_DRIVER": "mongo", "MONGO_MODE": "atlas", "MONGO_URI_ATLAS": ""}},
		{"firestore without project", map[string]string{"PASETO_SECRET_KEY": testKey, "STORE_DRIVER": "firestore", "FIRESTORE_PROJECT_ID": ""}},
		{"bad ttl", map[string]string{"PASETO_SECRET_KEY": testKey, "TOKEN_TTL": "soon"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMongoAndOrigins(t *testing.T) {
	t.Setenv("PASETO_SECRET_KEY", testKey)
	t.Setenv("STORE_DRIVER", "Mongo")
	t.Setenv("MONGO_MODE", "local")
	t.Setenv("MONGO_URI_LOCAL", "mongodb://db:27017")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example, ,http://localhost:3000")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, []string{"https://shop.example", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Production())
}

func TestLoadCatalog(t *testing.T) {
	def, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, "Shaaban Furniture Hub", def.Store.Name)
	assert.NotEmpty(t, def.Categories)

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  phone: "+255 700 000 000"
categories:
  - id: beds
    name: Beds
    image: https://img.example.com/beds.jpg
    imageHint: carved bed
`), 0o644))
	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "+255 700 000 000", c.Store.Phone)
	assert.Equal(t, "Zanzibar, Tanzania", c.Store.Location)
	require.Len(t, c.Categories, 1)
	assert.Equal(t, "Beds", c.CategoryName("beds"))

	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - id: x\n  - id: x\n    name: X\n"), 0o644))
	_, err = LoadCatalog(path)
	assert.Error(t, err)
}
