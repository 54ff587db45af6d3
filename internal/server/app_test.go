package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/filekeeper/internal/server/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.StorageRoot = t.TempDir()
	return c
}

func TestNewApp_RunStopsOnCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}

func TestNewApp_ConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"log backend", func(c *config.Config) { c.LogBackend = "syslog" }, "logger init error"},
		{"storage backend", func(c *config.Config) { c.StorageBackend = "ftp" }, "storage init error"},
		{"registry backend", func(c *config.Config) { c.RegistryBackend = "redis" }, "registry init error"},
		{"zero ttl", func(c *config.Config) { c.TempURLValidityDuration = 0 }, "temp url validity duration must be positive"},
		{"negative ttl", func(c *config.Config) { c.TempURLValidityDuration = -time.Minute }, "temp url validity duration must be positive"},
		{"zero max file size", func(c *config.Config) { c.MaxFileSize = 0 }, "max file size must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testConfig(t)
			tt.mutate(c)
			_, err := NewApp(context.Background(), c)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_StopsWhenJanitorScheduleInvalid(t *testing.T) {
	c := testConfig(t)
	c.JanitorSchedule = "whenever"
	app, err := NewApp(context.Background(), c)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app kept running with a broken janitor")
	}
}
