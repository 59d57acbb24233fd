package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scottcame/piet/internal/global"
)

func TestRun_ReturnsConfigurationError(t *testing.T) {
	t.Setenv("STORE_DRIVER", global.StoreDriverMemory)
	t.Setenv("PIET_UI_TABLE_FONT_INCREASE", "9")

	err := run(context.Background())
	assert.ErrorContains(t, err, "invalid ui config")
}

func TestRun_ReturnsStoreErrorAfterCleanup(t *testing.T) {
	t.Setenv("STORE_DRIVER", global.StoreDriverMongoDB)
	t.Setenv("MONGODB_CONNECTION_URI", "notamongo://localhost")
	t.Setenv("MONGODB_RETRY_ATTEMPTS", "1")
	t.Setenv("MONGODB_RETRY_WAIT_MS", "0")

	err := run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, global.MongoDB_Session)
}
