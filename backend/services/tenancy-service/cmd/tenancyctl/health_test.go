package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stayspot/mono-repo/backend/services/tenancy-service/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCmd(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != routes.Health {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	var out bytes.Buffer
	cmd := healthCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{ok.URL + "/"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "OK        "+ok.URL+routes.Health)

	out.Reset()
	cmd = healthCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{ok.URL, down.URL})
	require.Error(t, cmd.Execute())
	assert.Contains(t, out.String(), "UNHEALTHY "+down.URL+routes.Health+": status 503")
}
