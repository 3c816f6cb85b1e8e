package deck_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/wordflash/internal/deck"
)

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/words.json":
			assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
			w.Write([]byte(`[{"question":"a","answer":"b"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := deck.NewHTTPFetcher(time.Second)

	b, err := f.Fetch(context.Background(), srv.URL+"/words.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"question":"a","answer":"b"}]`, string(b))

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.json")
	require.Error(t, err)
	var fe *deck.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestHTTPFetcher_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := deck.NewHTTPFetcher(time.Second).Fetch(context.Background(), url+"/x.json")
	require.Error(t, err)
	assert.True(t, deck.IsFetchError(err))
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unit1.json"), []byte(`[]`), 0o600))

	f := deck.NewFileFetcher(dir)

	b, err := f.Fetch(context.Background(), "unit1.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	_, err = f.Fetch(context.Background(), "missing.json")
	assert.True(t, deck.IsFetchError(err))

	_, err = f.Fetch(context.Background(), "")
	assert.True(t, deck.IsFetchError(err))
}

func TestFetchers_RejectOversizedPayload(t *testing.T) {
	defer deck.SetMaxPayload(8)()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"question":"a"}]`))
	}))
	defer srv.Close()

	_, err := deck.NewHTTPFetcher(time.Second).Fetch(context.Background(), srv.URL+"/big.json")
	require.Error(t, err)
	assert.True(t, deck.IsFetchError(err))
	assert.False(t, deck.IsParseError(err))
	assert.ErrorIs(t, err, deck.ErrPayloadTooLarge)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.json"), []byte(`[{"question":"a"}]`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fits.json"), []byte(`[]`), 0o600))

	_, err = deck.NewFileFetcher(dir).Fetch(context.Background(), "big.json")
	assert.ErrorIs(t, err, deck.ErrPayloadTooLarge)

	b, err := deck.NewFileFetcher(dir).Fetch(context.Background(), "fits.json")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestFileFetcher_StaysInsideDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "decks")
	require.NoError(t, os.Mkdir(dir, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.json"), []byte(`[]`), 0o600))

	_, err := deck.NewFileFetcher(dir).Fetch(context.Background(), "../secret.json")
	assert.True(t, deck.IsFetchError(err))
}

func TestSourceFetcher_Dispatch(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.json"), []byte(`[{}]`), 0o600))

	local, err := deck.NewSourceFetcher("", dir, time.Second)
	require.NoError(t, err)

	b, err := local.Fetch(context.Background(), "local.json")
	require.NoError(t, err)
	assert.Equal(t, "[{}]", string(b))

	_, err = local.Fetch(context.Background(), srv.URL+"/absolute.json")
	require.NoError(t, err)

	remote, err := deck.NewSourceFetcher(srv.URL+"/decks", dir, time.Second)
	require.NoError(t, err)
	_, err = remote.Fetch(context.Background(), "unit2.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"/absolute.json", "/decks/unit2.json"}, paths)
}
