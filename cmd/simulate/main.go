// simulate races concurrent reservations against a running api-server to
// exercise the strict winner/loser guarantee: for one published slot,
// exactly one of the racing patients may win.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type simConfig struct {
	baseURL string
	workers int
	date    string
	vaccine string
	doses   int
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := simConfig{}
	flag.StringVar(&cfg.baseURL, "url", "http://localhost:8080", "api-server base URL")
	flag.IntVar(&cfg.workers, "workers", 10, "concurrent reservation attempts")
	flag.StringVar(&cfg.date, "date", time.Now().AddDate(0, 0, 1).Format("2006-01-02"), "date to race on")
	flag.StringVar(&cfg.vaccine, "vaccine", "Pfizer", "vaccine to reserve")
	flag.IntVar(&cfg.doses, "doses", 1, "doses to stock before the race")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}
	run := uuid.NewString()[:8]
	password := "Sim!pass1"

	// One caregiver publishes a single slot and stocks the vaccine.
	caregiver := "sim-caregiver-" + run
	mustRegister(client, cfg.baseURL, caregiver, password, "caregiver")
	caregiverToken := mustLogin(client, cfg.baseURL, caregiver, password)
	mustPost(client, cfg.baseURL+"/availabilities", caregiverToken,
		map[string]any{"date": cfg.date})
	mustPost(client, fmt.Sprintf("%s/vaccines/%s/doses", cfg.baseURL, cfg.vaccine), caregiverToken,
		map[string]any{"count": cfg.doses})

	// Patients race for it.
	tokens := make([]string, cfg.workers)
	for i := range tokens {
		patient := fmt.Sprintf("sim-patient-%s-%d", run, i)
		mustRegister(client, cfg.baseURL, patient, password, "patient")
		tokens[i] = mustLogin(client, cfg.baseURL, patient, password)
	}

	var wins, losses, errors int64
	var wg sync.WaitGroup
	start := time.Now()

	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			status, body := post(client, cfg.baseURL+"/appointments", token,
				map[string]any{"date": cfg.date, "vaccine": cfg.vaccine})
			switch status {
			case http.StatusCreated:
				atomic.AddInt64(&wins, 1)
				log.Printf("winner: %s", body)
			case http.StatusConflict:
				atomic.AddInt64(&losses, 1)
			default:
				atomic.AddInt64(&errors, 1)
				log.Printf("unexpected status %d: %s", status, body)
			}
		}(token)
	}
	wg.Wait()

	log.Printf("done in %s: %d winners, %d losers, %d errors (workers=%d, slots=1)",
		time.Since(start), wins, losses, errors, cfg.workers)
	if wins != 1 {
		log.Fatalf("expected exactly 1 winner, got %d", wins)
	}
}

func mustRegister(client *http.Client, baseURL, username, password, role string) {
	status, body := post(client, baseURL+"/accounts", "",
		map[string]any{"username": username, "password": password, "role": role})
	if status != http.StatusCreated {
		log.Fatalf("register %s: status %d: %s", username, status, body)
	}
}

func mustLogin(client *http.Client, baseURL, username, password string) string {
	status, body := post(client, baseURL+"/login", "",
		map[string]any{"username": username, "password": password})
	if status != http.StatusOK {
		log.Fatalf("login %s: status %d: %s", username, status, body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil || resp.Token == "" {
		log.Fatalf("login %s: bad response: %s", username, body)
	}
	return resp.Token
}

func mustPost(client *http.Client, url, token string, payload map[string]any) {
	status, body := post(client, url, token, payload)
	if status < 200 || status > 299 {
		log.Fatalf("POST %s: status %d: %s", url, status, body)
	}
}

func post(client *http.Client, url, token string, payload map[string]any) (int, string) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}
