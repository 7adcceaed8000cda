package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	testAppBinary      = "./rfpms_test_app"
	testAppPort        = "8089"
	testServiceApiPort = "8091"
	testAppURL         = "http://localhost:" + testAppPort
	testServiceApiURL  = "http://localhost:" + testServiceApiPort
	startupTimeout     = 15 * time.Second
	healthEndpoint     = testAppURL + "/api/health"
)

// appStarted is false when MONGO_URI or REDIS_ADDR is missing; every test then skips.
var appStarted bool

// TestMain builds the binary and runs it in "all" mode against a throwaway
// database, with outbound email captured in Redis.
func TestMain(m *testing.M) {
	_ = godotenv.Load()
	mongoURI := os.Getenv("MONGO_URI")
	redisAddr := os.Getenv("REDIS_ADDR")
	if mongoURI == "" || redisAddr == "" {
		log.Println("Integration tests skipped: MONGO_URI and REDIS_ADDR are required")
		os.Exit(m.Run())
	}

	os.Exit(runIntegration(m, mongoURI, redisAddr))
}

func runIntegration(m *testing.M, mongoURI, redisAddr string) int {
	defer func() { _ = os.Remove(testAppBinary) }()

	buildOutput, err := exec.Command("go", "build", "-o", testAppBinary, ".").CombinedOutput()
	if err != nil {
		log.Printf("Failed to build application: %v\nOutput:\n%s", err, string(buildOutput))
		return 1
	}

	dbName := fmt.Sprintf("rfp_integration_%d", time.Now().UnixNano())
	defer dropDatabase(mongoURI, dbName)

	appCmd := exec.Command(testAppBinary, "serve", "--mode", "all")
	appCmd.Env = append(os.Environ(),
		"MONGO_DB_NAME="+dbName,
		"API_PORT="+testAppPort,
		"SERVICE_API_PORT="+testServiceApiPort,
		"GIN_MODE=release",
		"MOCK_SERVICES=true",
		"REDIS_ADDR="+redisAddr,
		"SMTP_FROM_ADDRESS=procurement@example.com",
		"GEMINI_API_KEY=",
		"IMAP_HOST=",
		"INBOX_POLL_INTERVAL_SECONDS=0",
		"RATE_LIMIT_BUCKET_SIZE=100",
		"RATE_LIMIT_REFILL_RATE=100",
	)
	appCmd.Stderr = os.Stderr
	appCmd.Stdout = os.Stdout

	if err := appCmd.Start(); err != nil {
		log.Printf("Failed to start application: %v", err)
		return 1
	}
	defer func() {
		if err := appCmd.Process.Signal(syscall.SIGTERM); err != nil {
			_ = appCmd.Process.Kill()
		}
		_, _ = appCmd.Process.Wait()
	}()

	deadline := time.Now().Add(startupTimeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(healthEndpoint)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				appStarted = true
				break
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	if !appStarted {
		log.Printf("Application failed to start within %v", startupTimeout)
		return 1
	}

	return m.Run()
}

func dropDatabase(uri, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		log.Printf("Integration Test Teardown: cannot connect to drop %s: %v", name, err)
		return
	}
	defer client.Disconnect(ctx)
	if err := client.Database(name).Drop(ctx); err != nil {
		log.Printf("Integration Test Teardown: dropping %s: %v", name, err)
	}
}

func requireApp(t *testing.T) {
	t.Helper()
	if !appStarted {
		t.Skip("integration environment not configured")
	}
}

func call(t *testing.T, method, url string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestIntegration_Health(t *testing.T) {
	requireApp(t)

	status, body := call(t, http.MethodGet, healthEndpoint, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
}

func TestIntegration_RFPOutreach(t *testing.T) {
	requireApp(t)

	vendorEmail := fmt.Sprintf("sales+%d@acme.example", time.Now().UnixNano())
	status, body := call(t, http.MethodPost, testAppURL+"/api/vendors", map[string]any{
		"name":    "Acme Sales",
		"email":   vendorEmail,
		"company": "Acme Inc",
	})
	require.Equal(t, http.StatusCreated, status, body)
	vendor := body["vendor"].(map[string]any)
	vendorID := vendor["_id"].(string)

	status, body = call(t, http.MethodPost, testAppURL+"/api/vendors", map[string]any{
		"name":    "Acme Again",
		"email":   strings.ToUpper(vendorEmail),
		"company": "Acme Inc",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Vendor with this email already exists", body["message"])

	status, body = call(t, http.MethodPost, testAppURL+"/api/rfps/create", map[string]any{
		"description": "We need 20 laptops with 16GB RAM and 15 monitors. Budget is $50,000 total. Delivery within 30 days. Payment terms net 30.",
	})
	require.Equal(t, http.StatusCreated, status, body)
	rfp := body["rfp"].(map[string]any)
	rfpID := rfp["_id"].(string)
	assert.Equal(t, "draft", rfp["status"])

	status, body = call(t, http.MethodPost, testAppURL+"/api/rfps/"+rfpID+"/send", map[string]any{
		"vendorIds": []string{vendorID},
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "sent", body["rfp"].(map[string]any)["status"])

	status, body = call(t, http.MethodPost, testServiceApiURL+"/api", map[string]any{
		"method":    "getTestEmail",
		"arguments": []string{vendorEmail, "RFP-" + rfpID},
	})
	require.Equal(t, http.StatusOK, status, body)
	mail := body["data"].(map[string]any)
	assert.Contains(t, mail["subject"], "RFP-"+rfpID)
	assert.Contains(t, mail["to"], strings.ToLower(vendorEmail))

	status, body = call(t, http.MethodGet, testAppURL+"/api/proposals/rfp/"+rfpID, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["count"])

	status, body = call(t, http.MethodPost, testAppURL+"/api/proposals/check-emails", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, false, body["success"])
}
