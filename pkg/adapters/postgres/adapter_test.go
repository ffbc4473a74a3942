package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemaferry/schemaferry/pkg/adapter"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  adapter.Config
		want string
	}{
		{
			name: "full config",
			cfg: adapter.Config{
				Host:     "db.example.com",
				Port:     5433,
				Database: "shop",
				Username: "ferry",
				Password: "secret",
			},
			want: "host=db.example.com port=5433 dbname=shop sslmode=disable user=ferry password=secret",
		},
		{
			name: "defaults",
			cfg:  adapter.Config{Database: "shop"},
			want: "host=localhost port=5432 dbname=shop sslmode=disable",
		},
		{
			name: "sslmode override",
			cfg: adapter.Config{
				Database: "shop",
				Options:  map[string]string{"sslmode": "require"},
			},
			want: "host=localhost port=5432 dbname=shop sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildDSN(tt.cfg))
		})
	}
}

func TestRegistered(t *testing.T) {
	assert.True(t, adapter.IsRegistered("postgres"))

	a, err := adapter.New(adapter.Config{Type: "postgres"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, "postgres", a.DialectName())
}
