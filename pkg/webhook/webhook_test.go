package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/talklog/talklog/pkg/output"
	"github.com/talklog/talklog/pkg/stats"
)

func newTestReport() *output.Report {
	return output.NewReport([]*output.ChatroomReport{
		{
			Source: "exports/crew.txt",
			Stats: &stats.Summary{
				Title:         "Morning Crew",
				TotalMessages: 5,
				Invites:       1,
				Leaves:        1,
				SkippedLines:  1,
			},
		},
	}, time.Now())
}

func TestClient_Send_Success(t *testing.T) {
	var receivedBody []byte
	var receivedContentType string
	var receivedAuth string
	var receivedAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		receivedAuth = r.Header.Get("Authorization")
		receivedAgent = r.Header.Get("User-Agent")
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	client := NewClient()
	resp := client.Send(context.Background(), newTestReport(), SendOptions{
		URL:   server.URL,
		Token: "secret-token",
	})

	if !resp.Success() {
		t.Fatalf("Send() failed: %v", resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if receivedContentType != "application/json" {
		t.Errorf("Content-Type = %q", receivedContentType)
	}
	if receivedAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q", receivedAuth)
	}
	if receivedAgent != "talklog-webhook" {
		t.Errorf("User-Agent = %q", receivedAgent)
	}

	var decoded output.Report
	if err := json.Unmarshal(receivedBody, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.Summary.TotalMessages != 5 {
		t.Errorf("payload TotalMessages = %d, want 5", decoded.Summary.TotalMessages)
	}
}

func TestClient_Send_NoToken(t *testing.T) {
	var receivedAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})
	if !resp.Success() {
		t.Fatalf("Send() failed: %v", resp.Error)
	}
	if receivedAuth != "" {
		t.Errorf("Authorization = %q, want none", receivedAuth)
	}
}

func TestClient_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})

	if resp.Success() {
		t.Error("Send() should fail for 500")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
	if resp.Error == nil {
		t.Error("Error should be set for 500")
	}
	if resp.Body != "boom" {
		t.Errorf("Body = %q", resp.Body)
	}
}

func TestClient_Send_ConnectionRefused(t *testing.T) {
	// Closed server to get a connection error
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{URL: server.URL})

	if resp.Success() {
		t.Error("Send() should fail for unreachable server")
	}
	if resp.Error == nil {
		t.Error("Error should be set")
	}
}

func TestClient_Send_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), newTestReport(), SendOptions{
		URL:     server.URL,
		Timeout: 20 * time.Millisecond,
	})

	if resp.Success() {
		t.Error("Send() should time out")
	}
	if resp.Error == nil {
		t.Error("Error should be set on timeout")
	}
}

func TestResponse_Success(t *testing.T) {
	tests := []struct {
		resp Response
		want bool
	}{
		{Response{StatusCode: 200}, true},
		{Response{StatusCode: 204}, true},
		{Response{StatusCode: 301}, false},
		{Response{StatusCode: 404}, false},
		{Response{StatusCode: 200, Error: io.EOF}, false},
	}

	for _, tt := range tests {
		if got := tt.resp.Success(); got != tt.want {
			t.Errorf("Success(%d, err=%v) = %v, want %v",
				tt.resp.StatusCode, tt.resp.Error, got, tt.want)
		}
	}
}
