package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutObjectStoresCopy(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	data := []byte("snapshot")
	uri, err := store.PutObject(context.Background(), "a/b.html", "text/html", data)
	require.NoError(t, err)
	require.Equal(t, "memory://a/b.html", uri)

	data[0] = 'X'
	require.Equal(t, []byte("snapshot"), store.Object("a/b.html"), "stored content is a copy")
	require.Nil(t, store.Object("missing"))
}
