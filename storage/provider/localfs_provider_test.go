package provider

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotKey = "history/38zee-test-00001.json"

var snapshotDoc = []byte(`{"eic":"38ZEE-TEST-00001","last_fetch":"2025-06-01T12:00:00Z","point_count":1,` +
	`"measurements":[{"timestamp":"2025-06-01T00:00:00+0000","energyIn":1.5,"unit":"kWh"}]}`)

func newLocalFS(t *testing.T, prefix string) *LocalFSProvider {
	t.Helper()
	provider, err := NewLocalFSProvider(&ProviderConfig{
		Type:   ProviderTypeLocalFS,
		Prefix: prefix,
		LocalFS: &LocalFSConfig{
			BasePath:   t.TempDir(),
			CreateDirs: true,
		},
	})
	require.NoError(t, err)
	return provider
}

func TestNewLocalFSProvider(t *testing.T) {
	t.Run("wrong provider type", func(t *testing.T) {
		_, err := NewLocalFSProvider(&ProviderConfig{Type: ProviderTypeS3})
		assert.Error(t, err)
	})

	t.Run("defaults applied", func(t *testing.T) {
		dir := t.TempDir()
		provider, err := NewLocalFSProvider(&ProviderConfig{
			Type:    ProviderTypeLocalFS,
			LocalFS: &LocalFSConfig{BasePath: dir, CreateDirs: true},
		})
		require.NoError(t, err)
		assert.Equal(t, dir, provider.basePath)
		assert.Equal(t, os.FileMode(0755), os.FileMode(provider.permissions))
	})

	t.Run("creates base directory", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "snapshots")
		_, err := NewLocalFSProvider(&ProviderConfig{
			Type:    ProviderTypeLocalFS,
			LocalFS: &LocalFSConfig{BasePath: base, CreateDirs: true},
		})
		require.NoError(t, err)
		info, err := os.Stat(base)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("custom permissions", func(t *testing.T) {
		provider, err := NewLocalFSProvider(&ProviderConfig{
			Type: ProviderTypeLocalFS,
			LocalFS: &LocalFSConfig{
				BasePath:    t.TempDir(),
				CreateDirs:  true,
				Permissions: "0700",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0700), os.FileMode(provider.permissions))
	})
}

func TestParseFileMode(t *testing.T) {
	tests := []struct {
		input     string
		want      os.FileMode
		expectErr bool
	}{
		{input: "0755", want: 0755},
		{input: "0644", want: 0644},
		{input: "0700", want: 0700},
		{input: "755", expectErr: true},
		{input: "rwxr-xr-x", expectErr: true},
		{input: "0zzz", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseFileMode(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, os.FileMode(got))
		})
	}
}

func TestLocalFSBuildPath(t *testing.T) {
	plain := newLocalFS(t, "")
	assert.Equal(t, filepath.Join(plain.basePath, "history", "eic.json"),
		plain.buildPath("history/eic.json"))

	prefixed := newLocalFS(t, "estfeed")
	assert.Equal(t, filepath.Join(prefixed.basePath, "estfeed", "history", "eic.json"),
		prefixed.buildPath("history/eic.json"))
	assert.Equal(t, filepath.Join(prefixed.basePath, "estfeed", "history", "eic.json"),
		prefixed.buildPath("/history/eic.json"))
}

func TestLocalFSUploadDownloadRoundTrip(t *testing.T) {
	provider := newLocalFS(t, "")
	ctx := context.Background()

	require.NoError(t, provider.Upload(ctx, snapshotKey, bytes.NewReader(snapshotDoc)))

	reader, err := provider.Download(ctx, snapshotKey)
	require.NoError(t, err)
	defer reader.Close()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, snapshotDoc, got)
}

func TestLocalFSUploadOverwrites(t *testing.T) {
	provider := newLocalFS(t, "")
	ctx := context.Background()

	require.NoError(t, provider.Upload(ctx, snapshotKey, strings.NewReader(`{"point_count":1}`)))
	require.NoError(t, provider.Upload(ctx, snapshotKey, strings.NewReader(`{"point_count":2}`)))

	reader, err := provider.Download(ctx, snapshotKey)
	require.NoError(t, err)
	defer reader.Close()
	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.JSONEq(t, `{"point_count":2}`, string(got))
}

func TestLocalFSUploadLeavesNoTempFiles(t *testing.T) {
	provider := newLocalFS(t, "")
	ctx := context.Background()

	require.NoError(t, provider.Upload(ctx, snapshotKey, bytes.NewReader(snapshotDoc)))

	entries, err := os.ReadDir(filepath.Join(provider.basePath, "history"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "38zee-test-00001.json", entries[0].Name())
}

func TestLocalFSUploadWithoutCreateDirs(t *testing.T) {
	base := t.TempDir()
	provider, err := NewLocalFSProvider(&ProviderConfig{
		Type:    ProviderTypeLocalFS,
		LocalFS: &LocalFSConfig{BasePath: base, CreateDirs: false},
	})
	require.NoError(t, err)

	// history/ does not exist and the provider must not create it
	err = provider.Upload(context.Background(), snapshotKey, bytes.NewReader(snapshotDoc))
	assert.Error(t, err)
}

func TestLocalFSDownloadMissing(t *testing.T) {
	provider := newLocalFS(t, "")

	_, err := provider.Download(context.Background(), "history/unknown.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}

func TestLocalFSExists(t *testing.T) {
	provider := newLocalFS(t, "")
	ctx := context.Background()

	exists, err := provider.Exists(ctx, snapshotKey)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, provider.Upload(ctx, snapshotKey, bytes.NewReader(snapshotDoc)))

	exists, err = provider.Exists(ctx, snapshotKey)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalFSDeleteIdempotent(t *testing.T) {
	provider := newLocalFS(t, "")
	ctx := context.Background()

	require.NoError(t, provider.Upload(ctx, snapshotKey, bytes.NewReader(snapshotDoc)))
	require.NoError(t, provider.Delete(ctx, snapshotKey))

	exists, err := provider.Exists(ctx, snapshotKey)
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is not an error
	assert.NoError(t, provider.Delete(ctx, snapshotKey))
}

func TestLocalFSList(t *testing.T) {
	provider := newLocalFS(t, "")
	ctx := context.Background()

	keys := []string{
		"history/38zee-test-00001.json",
		"history/38zee-test-00002.json",
		"other/readme.txt",
	}
	for _, key := range keys {
		require.NoError(t, provider.Upload(ctx, key, bytes.NewReader(snapshotDoc)))
	}

	t.Run("all files", func(t *testing.T) {
		got, err := provider.List(ctx, "")
		require.NoError(t, err)
		assert.ElementsMatch(t, keys, got)
	})

	t.Run("history prefix", func(t *testing.T) {
		got, err := provider.List(ctx, "history/")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"history/38zee-test-00001.json",
			"history/38zee-test-00002.json",
		}, got)
	})

	t.Run("no match", func(t *testing.T) {
		got, err := provider.List(ctx, "nothing/")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestLocalFSListWithProviderPrefix(t *testing.T) {
	provider := newLocalFS(t, "estfeed")
	ctx := context.Background()

	require.NoError(t, provider.Upload(ctx, snapshotKey, bytes.NewReader(snapshotDoc)))

	// Returned keys include the provider prefix
	got, err := provider.List(ctx, "history/")
	require.NoError(t, err)
	assert.Equal(t, []string{"estfeed/" + snapshotKey}, got)
}
