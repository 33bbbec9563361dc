package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarworks/solarworks/internal/config"
	"github.com/solarworks/solarworks/internal/store/memstore"
)

func TestOpenStore_Memory(t *testing.T) {
	s, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &memstore.Store{}, s)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), config.DatabaseConfig{Driver: "sqlite"})
	assert.EqualError(t, err, "unsupported database driver: sqlite")
}
