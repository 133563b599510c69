package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/metalagman/taskcanvas/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Server.Addr = "127.0.0.1:0"
	return cfg
}

func TestServeOptionsValidate(t *testing.T) {
	require.NoError(t, fx.ValidateApp(serveOptions(testConfig(t))))
}

func TestServeStartsAPI(t *testing.T) {
	var ln net.Listener
	app := fx.New(serveOptions(testConfig(t)), fx.Populate(&ln))
	require.NoError(t, app.Err())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, app.Start(ctx))
	defer func() {
		require.NoError(t, app.Stop(ctx))
	}()

	base := "http://" + ln.Addr().String()
	resp, err := http.Post(base+"/api/projects", "application/json", strings.NewReader(`{"title":"Launch"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(base + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Projects []struct {
				Title string `json:"title"`
			} `json:"projects"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	require.Len(t, body.Data.Projects, 1)
	assert.Equal(t, "Launch", body.Data.Projects[0].Title)
}

func TestOpenAppHoldsDataDirLock(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	first, err := openApp(ctx, cfg)
	require.NoError(t, err)

	_, err = openApp(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in use")

	first.Close()
	second, err := openApp(ctx, cfg)
	require.NoError(t, err)
	second.Close()
}
