package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Pushes local files to the ingestion endpoint. Titles default to the file
// name without extension.

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	modality := flag.String("modality", "text", "Document modality (text or image)")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: ingest [-url <api-url>] [-modality text|image] <file>...")
		os.Exit(1)
	}

	color.Cyan("🚀 Ingesting %d file(s) into %s\n", len(files), *baseURL)

	failed := 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			color.Red("[SKIP] %s: %v", path, err)
			failed++
			continue
		}

		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		reqBody := map[string]interface{}{
			"title":    title,
			"content":  string(content),
			"modality": *modality,
			"metadata": map[string]interface{}{
				"source_file": filepath.Base(path),
			},
		}

		jsonBody, _ := json.Marshal(reqBody)
		resp, err := http.Post(*baseURL+"/documents", "application/json", bytes.NewBuffer(jsonBody))
		if err != nil {
			color.Red("[FAIL] %s: %v", path, err)
			failed++
			continue
		}

		var docResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&docResp)
		resp.Body.Close()

		if resp.StatusCode != http.StatusAccepted {
			color.Red("[FAIL] %s: status %s", path, resp.Status)
			if msg, ok := docResp["message"].(string); ok {
				fmt.Printf("  %s\n", msg)
			}
			failed++
			continue
		}

		color.Green("[OK] %s", path)
		if data, ok := docResp["data"].(map[string]interface{}); ok {
			if id, ok := data["id"].(string); ok {
				fmt.Printf("  Document ID: %s\n", id)
			}
		}
	}

	if failed > 0 {
		color.Red("\n%d of %d file(s) failed", failed, len(files))
		os.Exit(1)
	}
	color.Cyan("\n✅ All documents queued for ingestion")
}
