package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mlesn1/GeminiDiscordHelper/internal/memory"
)

type fixedStats struct{ st memory.Stats }

func (f fixedStats) Stats() memory.Stats { return f.st }

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(":0", nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("body = %+v", resp)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv := NewServer(":0", fixedStats{memory.Stats{Users: 3, Channels: 2}})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp statusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UserConvos != 3 || resp.ChannelConvos != 2 {
		t.Errorf("counts = %d/%d", resp.UserConvos, resp.ChannelConvos)
	}
	if resp.UptimeSecs < 0 {
		t.Errorf("uptime = %v", resp.UptimeSecs)
	}
}
