package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/arturoeanton/go-code-context/internal/port"
)

// FunctionNotifier implements port.Notifier by invoking a serverless edge
// function (e.g. a Resend email dispatcher) over HTTP.
type FunctionNotifier struct {
	baseURL      string
	serviceKey   string
	functionName string
	httpClient   *http.Client
}

// NewFunctionNotifier creates a notifier that POSTs to baseURL/functionName.
func NewFunctionNotifier(baseURL, serviceKey, functionName string) *FunctionNotifier {
	return &FunctionNotifier{
		baseURL:      baseURL,
		serviceKey:   serviceKey,
		functionName: functionName,
		httpClient:   &http.Client{},
	}
}

// NotifyCompletion invokes the edge function with the job's terminal state.
func (n *FunctionNotifier) NotifyCompletion(ctx context.Context, c port.Completion) error {
	payloadBytes, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := n.baseURL + "/" + n.functionName
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+n.serviceKey)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", n.functionName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("invoke %s: status %d: %s", n.functionName, resp.StatusCode, string(body))
	}
	return nil
}
