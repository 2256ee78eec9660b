package testutil

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTestEnvPaths(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/data.txt", "hello")
	require.True(t, env.FileExists("nested/data.txt"))
	require.Equal(t, "hello", env.ReadFileString("nested/data.txt"))
	require.False(t, env.FileExists("missing.txt"))
}

func TestGutendexStub(t *testing.T) {
	stub := NewGutendexStub(t)
	stub.Respond("search=dune", `{"count":1,"results":[]}`)

	resp, err := http.Get(stub.URL() + "/books/?search=dune")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, `{"count":1,"results":[]}`, string(body))

	resp, err = http.Get(stub.URL() + "/books/?search=unknown")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, EmptyResults, string(body))

	requests := stub.Requests()
	require.Len(t, requests, 2)
	require.Equal(t, "dune", requests[0].Get("search"))
}
