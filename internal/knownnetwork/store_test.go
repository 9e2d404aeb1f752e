package knownnetwork

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePersistAndLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "knownnetwork")
	store, err := OpenStore(dir)
	require.NoError(t, err)
	defer store.Close()

	nodes := map[string]Node{
		"127.0.0.1:51235": {
			ServerVersion:       "rippled-1.12.0",
			HandshakeSuccessful: true,
			ConnectingTime:      250 * time.Millisecond,
		},
	}
	require.NoError(t, store.PersistSnapshot(nodes))

	loaded, err := store.LoadSnapshot()
	require.NoError(t, err)
	require.Contains(t, loaded, "127.0.0.1:51235")
	assert.Equal(t, "rippled-1.12.0", loaded["127.0.0.1:51235"].ServerVersion)
	assert.True(t, loaded["127.0.0.1:51235"].HandshakeSuccessful)
}

func TestStoreReopenSeesPersistedData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "knownnetwork")
	store, err := OpenStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.PersistSnapshot(map[string]Node{
		"10.0.0.1:51235": {ServerVersion: "rippled-1.11.0"},
	}))
	require.NoError(t, store.Close())

	reopened, err := OpenStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadSnapshot()
	require.NoError(t, err)
	assert.Equal(t, "rippled-1.11.0", loaded["10.0.0.1:51235"].ServerVersion)
}
