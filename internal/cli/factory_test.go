package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/ticketflow/internal/config"
	"github.com/aretw0/ticketflow/internal/logging"
	"github.com/aretw0/ticketflow/pkg/adapters/file"
	"github.com/aretw0/ticketflow/pkg/adapters/memory"
	redisadapter "github.com/aretw0/ticketflow/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var answers = []string{"Ann", "ann@example.com", "+7 (911) 123-45-67", "Acme", "Website", "Landing page", ""}

func baseConfig() *config.Config {
	return &config.Config{
		SessionBackend: config.BackendMemory,
		TicketBackend:  config.BackendMemory,
		RedisPrefix:    "ticketflow:",
		PhoneMinDigits: 10,
		ListLimit:      5,
		StorageTimeout: time.Second,
	}
}

func fillForm(t *testing.T, rt *Runtime, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := rt.Desk.HandleLine(ctx, userID, "/start")
	require.NoError(t, err)
	for _, a := range answers {
		_, err := rt.Desk.HandleLine(ctx, userID, a)
		require.NoError(t, err)
	}
}

func metricValue(t *testing.T, rt *Runtime, name string) float64 {
	t.Helper()
	families, err := rt.Metrics.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestBuild_MemoryDefaults(t *testing.T) {
	var logs bytes.Buffer
	rt, err := Build(context.Background(), baseConfig(), logging.New(slog.LevelInfo, logging.WithOutput(&logs)))
	require.NoError(t, err)
	defer rt.Close()

	assert.IsType(t, &memory.Store{}, rt.Sessions)
	assert.IsType(t, &memory.TicketStore{}, rt.Tickets)

	fillForm(t, rt, "u1")
	tickets, err := rt.Desk.Tickets(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, tickets, 1)

	assert.Equal(t, 1.0, metricValue(t, rt, "ticketflow_tickets_total"))
	assert.Contains(t, logs.String(), "New ticket!")
}

func TestBuild_FileBackendEncrypted(t *testing.T) {
	dir := t.TempDir()
	cfg := baseConfig()
	cfg.SessionBackend = config.BackendFile
	cfg.SessionDir = dir
	cfg.SessionEncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))

	rt, err := Build(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	ctx := context.Background()
	_, err = rt.Desk.HandleLine(ctx, "u1", "/start")
	require.NoError(t, err)
	_, err = rt.Desk.HandleLine(ctx, "u1", "Very Secret Name")
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "u1.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Very Secret Name")

	s, err := rt.Desk.Session(ctx, "u1")
	require.NoError(t, err)
	name, ok := s.Collected.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Very Secret Name", name)

	plain := file.New(dir)
	_, err = plain.Load(ctx, "u1")
	require.NoError(t, err)
}

func TestBuild_BadEncryptionKey(t *testing.T) {
	cfg := baseConfig()
	cfg.SessionEncryptionKey = "c2hvcnQ="
	_, err := Build(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestBuild_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.SessionBackend = config.BackendRedis
	cfg.TicketBackend = config.BackendRedis
	cfg.SessionTTL = time.Hour
	cfg.DistributedLock = true
	cfg.RedisAddr = mr.Addr()

	rt, err := Build(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	assert.IsType(t, &redisadapter.Store{}, rt.Sessions)
	assert.IsType(t, &redisadapter.TicketStore{}, rt.Tickets)

	fillForm(t, rt, "u1")
	assert.True(t, mr.Exists("ticketflow:ticket:1"))

	users, err := rt.Sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestBuild_RedisUnreachable(t *testing.T) {
	cfg := baseConfig()
	cfg.TicketBackend = config.BackendRedis
	cfg.RedisAddr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Build(ctx, cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestBuild_SchemaAndTemplates(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "form.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`
fields:
  - name: topic
    prompt: What is it about?
    validator: text
    required: true
`), 0o644))
	tplPath := filepath.Join(dir, "new.tmpl")
	require.NoError(t, os.WriteFile(tplPath, []byte("ticket {{.TicketID}} by {{.UserID}}"), 0o644))

	var (
		mu       sync.Mutex
		received []string
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Text     string   `json:"text"`
			AdminIDs []string `json:"admin_ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		received = append(received, body.Text)
		mu.Unlock()
	}))
	defer hook.Close()

	cfg := baseConfig()
	cfg.FormSchema = schemaPath
	cfg.NewTicketTemplate = tplPath
	cfg.NotifyWebhookURL = hook.URL
	cfg.AdminIDs = []string{"100"}

	rt, err := Build(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, []string{"topic"}, rt.Desk.Schema().Names())

	ctx := context.Background()
	_, err = rt.Desk.HandleLine(ctx, "u9", "/new")
	require.NoError(t, err)
	_, err = rt.Desk.HandleLine(ctx, "u9", "printer")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, "ticket 1 by u9", received[0])
	mu.Unlock()
}

func TestBuild_MissingFiles(t *testing.T) {
	cfg := baseConfig()
	cfg.FormSchema = filepath.Join(t.TempDir(), "nope.yaml")
	_, err := Build(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)

	cfg = baseConfig()
	cfg.TicketDeletedTemplate = filepath.Join(t.TempDir(), "nope.tmpl")
	_, err = Build(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}
