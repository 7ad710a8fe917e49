package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"travelink/pkg/config"
)

// devflow drives one request end to end through a locally running API:
// submit as the requester, then approve stage by stage as each approver,
// using the X-User-ID dev header. Requires APP_ENV != prod.
func main() {
	var (
		baseURL     = flag.String("base-url", "", "api base url (defaults from HTTP_ADDR)")
		requesterID = flag.String("requester", "", "user id submitting the request")
		headID      = flag.String("head", "", "department head user id (skip if requester is head)")
		adminID     = flag.String("admin", "", "admin office user id")
		comptID     = flag.String("comptroller", "", "comptroller user id (skip for no-budget flow)")
		hrID        = flag.String("hr", "", "hr user id")
		execID      = flag.String("exec", "", "executive user id")
		total       = flag.String("total", "0", "total budget; 0 keeps comptroller/hr out of the chain")
	)
	flag.Parse()

	if *requesterID == "" || *adminID == "" {
		fmt.Fprintln(os.Stderr, "missing -requester or -admin")
		os.Exit(2)
	}

	cfg := config.Load()
	if *baseURL == "" {
		*baseURL = defaultBaseURL(cfg.HTTPAddr)
	}

	start := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Hour)
	submission := map[string]any{
		"type":         "travel_order",
		"title":        "devflow sample trip",
		"purpose":      "seeded by cmd/dev/devflow",
		"destination":  "Regional campus",
		"travelStart":  start,
		"travelEnd":    start.Add(48 * time.Hour),
		"headIncluded": true,
		"totalBudget":  *total,
		"signature":    "devflow-sig-" + *requesterID,
		"needsVehicle": true,
	}
	if *total != "0" {
		submission["expenseBreakdown"] = []map[string]string{{"item": "transport", "amount": *total}}
	}

	var created struct {
		ID    string `json:"id"`
		Stage string `json:"stage"`
	}
	if err := call(*baseURL, http.MethodPost, "/v1/requests", *requesterID, submission, &created); err != nil {
		fmt.Fprintf(os.Stderr, "submit: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("submitted request id=%s stage=%s\n", created.ID, created.Stage)

	approvers := map[string]string{
		"pending_head":        *headID,
		"pending_parent_head": *headID,
		"pending_admin":       *adminID,
		"pending_comptroller": *comptID,
		"pending_hr":          *hrID,
		"pending_exec":        *execID,
	}

	stage := created.Stage
	for strings.HasPrefix(stage, "pending_") {
		actor := approvers[stage]
		if actor == "" {
			fmt.Fprintf(os.Stderr, "no user id provided for stage %s\n", stage)
			os.Exit(2)
		}
		var updated struct {
			Stage string `json:"stage"`
		}
		body := map[string]string{"signature": "devflow-sig-" + actor}
		if err := call(*baseURL, http.MethodPost, "/v1/requests/"+created.ID+"/approve", actor, body, &updated); err != nil {
			fmt.Fprintf(os.Stderr, "approve %s: %v\n", stage, err)
			os.Exit(1)
		}
		fmt.Printf("approved %s -> %s (actor=%s)\n", stage, updated.Stage, actor)
		stage = updated.Stage
	}

	fmt.Printf("final stage: %s\n", stage)
}

func call(base, method, path, userID string, reqBody any, respBody any) error {
	b, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, strings.TrimRight(base, "/")+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", userID)

	resp, err := (&http.Client{Timeout: 15 * time.Second}).Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(out))
	}
	if respBody != nil && len(out) > 0 {
		return json.Unmarshal(out, respBody)
	}
	return nil
}

func defaultBaseURL(httpAddr string) string {
	addr := strings.TrimSpace(httpAddr)
	if addr == "" {
		addr = ":8080"
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	if strings.HasPrefix(addr, "0.0.0.0:") {
		return "http://localhost" + strings.TrimPrefix(addr, "0.0.0.0")
	}
	return "http://" + addr
}
