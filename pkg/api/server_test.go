package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/catalog"
)

func TestStartServer_RequiresAPIKey(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	err := StartServer(context.Background(), env.catalog, ServerConfig{Port: 0}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestStartServer_StopsOnCancel(t *testing.T) {
	env := setupTestServer(t, ServerConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- StartServer(ctx, env.catalog, ServerConfig{Bind: "127.0.0.1", Port: 0, APIKey: testAPIKey}, zap.NewNop())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestFactories(t *testing.T) {
	store, err := NewCatalogFactory().OpenCatalog(catalog.Config{Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	defer store.Close()

	id, err := store.Put(testRecord(t, "f1", "From factory"))
	require.NoError(t, err)
	assert.Equal(t, "f1", id)

	starter := NewServerFactory().CreateServerStarter()
	assert.IsType(t, &DefaultServerStarter{}, starter)
}
