package db

import (
	"testing"
	"testing/fstest"

	"sales-assistant/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover_OrdersAndChecksums(t *testing.T) {
	fsys := fstest.MapFS{
		"002_indexes.sql": {Data: []byte("CREATE INDEX x ON t(a);")},
		"001_schema.sql":  {Data: []byte("CREATE TABLE t(a int);")},
		"README.md":       {Data: []byte("not a migration")},
	}
	ms, err := Discover(fsys)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "001", ms[0].Version)
	assert.Equal(t, "002_indexes.sql", ms[1].Filename)
	assert.Len(t, ms[0].Checksum, 64)
	assert.NotEqual(t, ms[0].Checksum, ms[1].Checksum)
}

func TestDiscover_Rejections(t *testing.T) {
	_, err := Discover(fstest.MapFS{
		"001_a.sql": {Data: []byte("SELECT 1;")},
		"001_b.sql": {Data: []byte("SELECT 2;")},
	})
	assert.ErrorContains(t, err, "duplicate migration version 001")

	_, err = Discover(fstest.MapFS{"schema.sql": {Data: []byte("SELECT 1;")}})
	assert.ErrorContains(t, err, "invalid migration filename")
}

func TestDiscover_EmbeddedMigrations(t *testing.T) {
	ms, err := Discover(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	assert.Equal(t, "001_ledger_schema.sql", ms[0].Filename)
	assert.Contains(t, ms[0].SQL, "estado_caja")
}
