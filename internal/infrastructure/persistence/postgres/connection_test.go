package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"connection class", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "08006"}), true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(fmt.Errorf("load: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("other")))
}

func TestPoolOptions_Apply(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/db")
	require.NoError(t, err)
	DefaultPoolOptions().apply(cfg)
	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Equal(t, int32(1), cfg.MinConns)

	PoolOptions{}.apply(cfg)
	assert.Equal(t, int32(10), cfg.MaxConns)
}

func TestGetMigrations_Ordered(t *testing.T) {
	migs := GetMigrations()
	for i, m := range migs {
		assert.Equal(t, i+1, m.Version)
		assert.NotEmpty(t, m.UpSQL)
		assert.NotEmpty(t, m.DownSQL)
	}
}
