package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/realm-movement/game/service"
	"github.com/wricardo/realm-movement/transport/websocket"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedAppName := "Realm Movement Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestGetRulesetDirDefault(t *testing.T) {
	t.Setenv("RULESET_DIR", "")
	if got := getRulesetDirDefault(); got != "rulesets" {
		t.Errorf("Expected default 'rulesets', got %s", got)
	}

	t.Setenv("RULESET_DIR", "/tmp/mods")
	if got := getRulesetDirDefault(); got != "/tmp/mods" {
		t.Errorf("Expected env override, got %s", got)
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("rulesets"); os.IsNotExist(err) {
		t.Skip("Skipping test - rulesets directory not found")
	}

	movementService, err := initializeServices("rulesets")
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if movementService == nil {
		t.Fatal("Expected movement service to be initialized")
	}

	rulesets, err := movementService.ListRulesets(context.Background())
	if err != nil {
		t.Fatalf("ListRulesets failed: %v", err)
	}
	if len(rulesets) == 0 {
		t.Error("Expected bundled rulesets to be listed")
	}
}

func TestInitializeServices_InvalidRulesetDir(t *testing.T) {
	_, err := initializeServices("/non/existent/path")
	if err == nil {
		t.Error("Expected error for non-existent ruleset directory")
	}
}

func TestInitializeServices_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a ruleset"), 0644); err != nil {
		t.Fatal(err)
	}

	movementService, err := initializeServices(dir)
	if err != nil {
		t.Fatalf("Expected empty directory to be accepted, got %v", err)
	}
	if _, err := movementService.GetRuleset(context.Background(), ""); !service.IsNotFound(err) {
		t.Errorf("Expected not found without a default ruleset, got %v", err)
	}
}

func TestFlagDefaults(t *testing.T) {
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}
	if *host == "" {
		t.Error("Host should have a default value")
	}
	if *rulesetDir == "" {
		t.Error("Ruleset directory should have a default value")
	}
}

func TestNgrokAuthToken(t *testing.T) {
	original := *ngrokAuth
	defer func() { *ngrokAuth = original }()

	*ngrokAuth = ""
	t.Setenv("NGROK_AUTHTOKEN", "")
	t.Setenv("NGROK_AUTH_TOKEN", "legacy")
	if got := ngrokAuthToken(); got != "legacy" {
		t.Errorf("Expected legacy env token, got %q", got)
	}

	t.Setenv("NGROK_AUTHTOKEN", "env")
	if got := ngrokAuthToken(); got != "env" {
		t.Errorf("Expected NGROK_AUTHTOKEN to win, got %q", got)
	}

	*ngrokAuth = "flag"
	if got := ngrokAuthToken(); got != "flag" {
		t.Errorf("Expected flag token to win, got %q", got)
	}
}

func TestRouter(t *testing.T) {
	if _, err := os.Stat("rulesets"); os.IsNotExist(err) {
		t.Skip("Skipping test - rulesets directory not found")
	}

	movementService, err := initializeServices("rulesets")
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := websocket.NewHub(movementService, log)
	go hub.Run(ctx)

	ts := httptest.NewServer(newRouter(movementService, hub, "http://127.0.0.1:0"))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected health 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/mcp")
	if err != nil {
		t.Fatalf("mcp GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", resp.StatusCode)
	}

	body := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	resp, err = http.Post(ts.URL+"/mcp", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("mcp POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 from /mcp, got %d", resp.StatusCode)
	}

	var rpc struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
		t.Fatalf("Failed to decode MCP response: %v", err)
	}

	names := make(map[string]bool)
	for _, tool := range rpc.Result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"list_rulesets", "overland_cost_matrix", "casting_range_penalty"} {
		if !names[want] {
			t.Errorf("Expected MCP tool %s to be listed, got %v", want, names)
		}
	}
}
