package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemaferry/schemaferry/pkg/adapter"
)

func TestBuildDSN(t *testing.T) {
	cfg := adapter.Config{
		Host:     "db.example.com",
		Port:     3307,
		Database: "shop",
		Username: "ferry",
		Password: "secret",
	}
	assert.Equal(t, "ferry:secret@tcp(db.example.com:3307)/shop?parseTime=true", buildDSN(cfg))
}

func TestBuildDSNDefaults(t *testing.T) {
	cfg := adapter.Config{Database: "shop", Username: "root"}
	assert.Equal(t, "root@tcp(localhost:3306)/shop?parseTime=true", buildDSN(cfg))
}

func TestRegistered(t *testing.T) {
	assert.True(t, adapter.IsRegistered("mysql"))
}
