package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"rfid-logbook/internal/repository"
)

const pocketbaseURL = "http://127.0.0.1:8090"

var httpClient = &http.Client{Timeout: 10 * time.Second}

func main() {
	fmt.Println("🚀 PocketBase Collection Setup Script")
	fmt.Println("=====================================")

	// Load .env file if exists
	godotenv.Load()

	url := getEnv("POCKETBASE_URL", pocketbaseURL)
	token := getEnv("POCKETBASE_TOKEN", "")

	fmt.Printf("Connecting to: %s\n", url)

	if err := checkHealth(url); err != nil {
		fmt.Printf("❌ Cannot connect to PocketBase: %v\n", err)
		fmt.Printf("\nCheck with: curl %s/api/health\n", url)
		os.Exit(1)
	}

	if token == "" {
		fmt.Println("❌ POCKETBASE_TOKEN not set")
		fmt.Println("\nPlease set:")
		fmt.Println("  export POCKETBASE_TOKEN=your_superuser_token")
		fmt.Println("\nTo get token:")
		fmt.Printf("  curl -X POST %s/api/collections/_superusers/auth-with-password \\\n", url)
		fmt.Println("    -H \"Content-Type: application/json\" \\")
		fmt.Println("    -d '{\"identity\":\"admin@example.com\",\"password\":\"password123\"}'")
		os.Exit(1)
	}

	if err := testAuth(url, token); err != nil {
		fmt.Printf("❌ Auth test failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n📦 Creating collection: %s\n", repository.BlobCollection)
	if err := createBlobCollection(url, token); err != nil {
		fmt.Printf("   ⚠️  %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\n🎉 Setup complete!")
	fmt.Printf("\nAccess Admin UI: %s/_/\n", url)
}

func testAuth(baseURL, token string) error {
	url := fmt.Sprintf("%s/api/collections", baseURL)
	req, _ := http.NewRequest("GET", url, nil)
	req.Header.Set("Authorization", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	fmt.Println("✅ Authentication successful")
	return nil
}

func createBlobCollection(baseURL, token string) error {
	createData := map[string]interface{}{
		"name": repository.BlobCollection,
		"type": "base",
		"fields": []map[string]interface{}{
			{
				"name":     "key",
				"type":     "text",
				"required": true,
				"max":      64,
				"pattern":  "^[a-z0-9_]+$",
			},
			{
				"name": "value",
				"type": "text",
				"max":  16 << 20,
			},
			{
				"name":     "updated",
				"type":     "autodate",
				"onCreate": true,
				"onUpdate": true,
			},
		},
		"indexes": []string{
			fmt.Sprintf("CREATE UNIQUE INDEX `idx_kv_blobs_key` ON `%s` (`key`)", repository.BlobCollection),
		},
	}

	jsonData, _ := json.Marshal(createData)
	req, _ := http.NewRequest("POST", fmt.Sprintf("%s/api/collections", baseURL), bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}

	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest && (bytes.Contains(body, []byte("already exists")) || bytes.Contains(body, []byte("must be unique"))) {
		fmt.Printf("   Collection already exists\n")
		return nil
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create failed: %s - %s", resp.Status, string(body))
	}

	fmt.Printf("   ✅ Created successfully\n")
	return nil
}

func checkHealth(baseURL string) error {
	resp, err := httpClient.Get(baseURL + "/api/health")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %s", resp.Status)
	}

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("✅ PocketBase is running: %s\n", string(body))
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
