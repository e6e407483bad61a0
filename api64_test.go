package api64

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antmrlt/API64/config"
	"github.com/antmrlt/API64/core"
	"github.com/antmrlt/API64/internal/testutil"
	"github.com/antmrlt/API64/naming"
	"github.com/antmrlt/API64/server"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.APIKey = testutil.TestAPIKey
	cfg.Domain = "files.example"
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "nested", "uploads")
	return cfg
}

func TestNew_RequiresAPIKey(t *testing.T) {
	cfg := config.Default()
	_, err := New(cfg)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestNew_CreatesStorageDir(t *testing.T) {
	cfg := testConfig(t)
	_, err := New(cfg, func(o *Options) { o.Logger = nil; o.LogOutput = &bytes.Buffer{} })
	require.NoError(t, err)

	info, err := os.Stat(cfg.Storage.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGateway_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.ContentTypes = map[string]string{"application/x-custom": "cst"}

	var logs bytes.Buffer
	gw, err := New(cfg, func(o *Options) {
		o.LogOutput = &logs
		o.Names = naming.New(func(o *naming.Options) {
			o.Now = func() time.Time { return testutil.FixedTime }
			o.Entropy = testutil.FixedEntropy(0x01, 1)
		})
	})
	require.NoError(t, err)

	srv := httptest.NewServer(gw.Handler())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+server.RouteUpload,
		strings.NewReader(`{"content_type":"application/x-custom","base64_string":"aGVsbG8=","sha256":true}`))
	require.NoError(t, err)
	req.Header.Set(server.HeaderAPIKey, testutil.TestAPIKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body server.ResponseUpload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	name := "file_1700000000_01010101010101010101010101010101.cst"
	assert.Equal(t, "File saved as "+name, body.Message)
	assert.Equal(t, "http://files.example:5000/uploads/"+name, body.FileURL)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", body.FileSHA256)

	info, err := os.Stat(filepath.Join(cfg.Storage.Dir, name))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o444), info.Mode().Perm())

	get, err := http.Get(srv.URL + "/uploads/" + name)
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)
	assert.Equal(t, "application/x-custom", get.Header.Get("Content-Type"))

	m, err := http.Get(srv.URL + server.RouteMetrics)
	require.NoError(t, err)
	defer m.Body.Close()
	var metricsBody bytes.Buffer
	_, err = metricsBody.ReadFrom(m.Body)
	require.NoError(t, err)
	assert.Contains(t, metricsBody.String(), `api64_artifacts_ingested_total{extension="cst",outcome="ok"} 1`)

	assert.Contains(t, logs.String(), "artifact ingested")
	assert.Contains(t, logs.String(), name)
	assert.NotContains(t, logs.String(), testutil.TestAPIKey)
}

func TestGateway_MemoryBackendAndDirectIngest(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Backend = config.BackendMemory

	gw, err := New(cfg, func(o *Options) { o.LogOutput = &bytes.Buffer{}; o.DisableMetrics = true })
	require.NoError(t, err)

	_, err = os.Stat(cfg.Storage.Dir)
	assert.True(t, os.IsNotExist(err))

	res, err := gw.Ingest(context.Background(), testutil.TestAPIKey, testutil.NewRequestBuilder().Build())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Name, ".txt"))

	_, err = gw.Ingest(context.Background(), "", testutil.NewRequestBuilder().Build())
	assert.ErrorIs(t, err, core.ErrAuth)

	rec := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.RouteMetrics, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_HandBuiltConfig(t *testing.T) {
	cfg := config.Config{
		APIKey:  testutil.TestAPIKey,
		Storage: config.StorageConfig{Backend: config.BackendMemory},
	}

	var logs bytes.Buffer
	gw, err := New(cfg, func(o *Options) { o.LogOutput = &logs })
	require.NoError(t, err)
	assert.Equal(t, "slog", gw.Config().Log.Backend)
	assert.Equal(t, "http://localhost:5000", gw.Config().BaseURL())

	res, err := gw.Ingest(context.Background(), testutil.TestAPIKey, testutil.NewRequestBuilder().Build())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/uploads/"+res.Name, res.URL)
	assert.Contains(t, logs.String(), "artifact ingested")

	_, err = New(config.Config{})
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	l, err := NewLogger(config.LogConfig{Level: "debug", Format: "json", Backend: "slog"}, &buf)
	require.NoError(t, err)
	l.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	l, err = NewLogger(config.LogConfig{Level: "info", Format: "json", Backend: "zap"}, &buf)
	require.NoError(t, err)
	l.Info("from zap", "k", "v")
	assert.Contains(t, buf.String(), "from zap")

	buf.Reset()
	l, err = NewLogger(config.LogConfig{}, &buf)
	require.NoError(t, err)
	l.Info("defaults")
	assert.Contains(t, buf.String(), `"msg":"defaults"`)

	_, err = NewLogger(config.LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)

	_, err = NewLogger(config.LogConfig{Level: "info", Backend: "logrus"}, &buf)
	assert.Error(t, err)
}
