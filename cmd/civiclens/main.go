package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// civiclens is the operator CLI. It talks to a running civiclensd over
// HTTP; it does not run the pipeline in-process.
func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	base := os.Getenv("CL_ADDR")
	if base == "" {
		base = "http://localhost:8090"
	}
	client := &http.Client{Timeout: 60 * time.Second}

	switch os.Args[1] {
	case "analyze":
		analyze(client, base, strings.Join(os.Args[2:], " "))
	case "taxonomy":
		get(client, base+"/v1/taxonomy")
	case "departments":
		get(client, base+"/v1/departments")
	case "doctor":
		doctor(client, base)
	default:
		usage()
	}
}

func analyze(client *http.Client, base, text string) {
	if strings.TrimSpace(text) == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("read stdin: %v", err)
		}
		text = string(data)
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, base+"/v1/analyze", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := os.Getenv("CL_API_KEY"); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	printJSON(resp.Body)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func get(client *http.Client, url string) {
	resp, err := client.Get(url)
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	printJSON(resp.Body)
}

func doctor(client *http.Client, base string) {
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := client.Get(base + path)
		if err != nil {
			fmt.Printf("%-10s unreachable: %v\n", path, err)
			continue
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		fmt.Printf("%-10s %d %s\n", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
}

func printJSON(r io.Reader) {
	data, err := io.ReadAll(r)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return
	}
	fmt.Println(out.String())
}

func usage() {
	fmt.Println("usage: civiclens <command>")
	fmt.Println("  analyze <text>   classify a complaint (reads stdin when no text given)")
	fmt.Println("  taxonomy         print the classification vocabulary")
	fmt.Println("  departments      print the routing directory")
	fmt.Println("  doctor           check daemon health and readiness")
	fmt.Println("daemon address comes from CL_ADDR (default http://localhost:8090)")
}
