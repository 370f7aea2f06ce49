package contact

import (
	"context"
	"strings"
	"testing"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/config"
	"desk-wallet/pkg/database"
	"desk-wallet/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	aliceAddr = "7E5F4552091A69125D5DFCB7B8C2659029395BDF"
	bobAddr   = "2B5AD5C4795C026514F8317C7A215E218DCCD6CF"
)

func setupDB(t *testing.T) *gorm.DB {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	db, err := database.ConnectPostgres(cfg.DB.DSN(), false)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	require.NoError(t, db.AutoMigrate(&model.Contact{}))
	db.Exec("DELETE FROM contacts")
	return db
}

func TestContactBook(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	saved, err := s.Save(ctx, model.Contact{Address: strings.ToLower(aliceAddr), Name: " Alice ", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, aliceAddr, saved.Address)
	assert.Equal(t, "Alice", saved.Name)

	_, err = s.Save(ctx, model.Contact{Address: bobAddr, Name: "Bob", IsBlackListed: true})
	require.NoError(t, err)

	// 同一地址覆盖而不是新增
	updated, err := s.Save(ctx, model.Contact{Address: aliceAddr, Name: "Alice B", Notes: "rent"})
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "rent", updated.Notes)
	assert.Empty(t, updated.Email)

	all, err := s.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alice B", all[0].Name)

	blocked := true
	onlyBlocked, err := s.List(ctx, &blocked)
	require.NoError(t, err)
	require.Len(t, onlyBlocked, 1)
	assert.Equal(t, bobAddr, onlyBlocked[0].Address)

	require.NoError(t, s.Remove(ctx, bobAddr))
	assert.ErrorIs(t, s.Remove(ctx, bobAddr), errno.ErrNotFound)
	_, err = s.Get(ctx, bobAddr)
	assert.ErrorIs(t, err, errno.ErrNotFound)
}

func TestContactBook_Invalid(t *testing.T) {
	s := NewService(setupDB(t))
	ctx := context.Background()

	_, err := s.Save(ctx, model.Contact{Address: "XYZ", Name: "x"})
	assert.ErrorIs(t, err, errno.ErrInvalidAddress)
	_, err = s.Save(ctx, model.Contact{Address: aliceAddr, Name: "  "})
	assert.ErrorIs(t, err, errno.ErrValidation)
	_, err = s.Get(ctx, "nothex")
	assert.ErrorIs(t, err, errno.ErrInvalidAddress)
}
