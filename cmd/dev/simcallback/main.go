package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// simcallback posts a signed SMS delivery callback at a locally running
// API, standing in for the gateway.
func main() {
	var (
		url       = flag.String("url", "", "callback endpoint url (defaults to http://localhost<HTTP_ADDR>/v1/sms/callback)")
		secret    = flag.String("secret", "", "SMS_CALLBACK_SECRET used by server")
		messageID = flag.String("message-id", "", "gateway message id to update")
		status    = flag.String("status", "delivered", "delivery status: delivered | failed")
	)
	flag.Parse()

	if *url == "" {
		httpAddr := os.Getenv("HTTP_ADDR")
		if httpAddr == "" {
			httpAddr = ":8080"
		}
		if len(httpAddr) > 0 && httpAddr[0] == ':' {
			*url = "http://localhost" + httpAddr + "/v1/sms/callback"
		} else {
			*url = "http://localhost:8080/v1/sms/callback"
		}
	}

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "missing -secret")
		os.Exit(2)
	}
	if *messageID == "" {
		fmt.Fprintln(os.Stderr, "missing -message-id")
		os.Exit(2)
	}

	b, _ := json.Marshal(map[string]string{"messageId": *messageID, "status": *status})
	sig := sign(b, *secret)

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(b))
	if err != nil {
		fmt.Fprintf(os.Stderr, "new request: %v\n", err)
		os.Exit(2)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Gateway-Signature", sig)

	c := &http.Client{Timeout: 10 * time.Second}
	resp, err := c.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "post: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d\n%s\n", resp.StatusCode, string(body))
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
