package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solarworks/solarworks/internal/models"
	"github.com/solarworks/solarworks/internal/store"
	"github.com/solarworks/solarworks/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestGetAdminByEmail_CaseInsensitive(t *testing.T) {
	s := New()
	require.NoError(t, s.CreateAdmin(context.Background(), &models.Admin{Email: "ops@solar.example", Name: "Ops"}))

	admin, err := s.GetAdminByEmail(context.Background(), "OPS@solar.example")
	require.NoError(t, err)
	assert.Equal(t, "Ops", admin.Name)
}

func TestPing_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, New().Ping(ctx), context.Canceled)
}
