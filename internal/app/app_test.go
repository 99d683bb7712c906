package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitForEngine(t *testing.T) {
	engineServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer engineServer.Close()

	done := make(chan struct{})
	go func() {
		waitForEngine(engineServer.URL)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("waitForEngine did not return for a healthy engine")
	}
}

func TestSetupLogger(t *testing.T) {
	for _, level := range []string{"DEBUG", "INFO", "WARN", "ERROR", "debug", "unknown"} {
		t.Run(level, func(t *testing.T) {
			assert.NotPanics(t, func() { setupLogger(level) })
		})
	}
}
