package mask_test

import (
	"testing"

	"github.com/rise-and-shine/filestash/pkg/mask"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbConfig struct {
	Host     string `yaml:"host"`
	Password string `yaml:"password" mask:"true"`
}

type appConfig struct {
	Name     string   `json:"name"`
	APIKey   string   `yaml:"api_key" mask:"true"`
	Database dbConfig `yaml:"database"`
	Internal string   `json:"-"`
}

func TestStructToOrdMap(t *testing.T) {
	t.Parallel()

	cfg := appConfig{
		Name:     "filestash",
		APIKey:   "super-secret",
		Database: dbConfig{Host: "localhost", Password: "hunter2"},
		Internal: "hidden",
	}

	om := mask.StructToOrdMap(cfg)
	require.NotNil(t, om)

	name, _ := om.Get("name")
	assert.Equal(t, "filestash", name)

	apiKey, _ := om.Get("api_key")
	assert.Equal(t, "***masked-string***", apiKey)

	host, _ := om.Get("database.host")
	assert.Equal(t, "localhost", host)

	password, _ := om.Get("database.password")
	assert.Equal(t, "***masked-string***", password)

	_, hasInternal := om.Get("Internal")
	assert.False(t, hasInternal)
}

func TestStructToOrdMapZeroValuesUnmasked(t *testing.T) {
	t.Parallel()

	om := mask.StructToOrdMap(appConfig{})
	require.NotNil(t, om)

	apiKey, _ := om.Get("api_key")
	assert.Equal(t, "", apiKey)
}

func TestStructToOrdMapNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, mask.StructToOrdMap(nil))
}
