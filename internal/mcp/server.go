package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arturoeanton/go-code-context/internal/domain"
	"github.com/arturoeanton/go-code-context/internal/port"
	"github.com/arturoeanton/go-code-context/internal/service"
)

// Server implements the Model Context Protocol (MCP) tool surface over
// JSON-RPC. It exposes the code-context tools to external AI agents.
type Server struct {
	contextService *service.ContextService
	port           string
}

// NewServer creates a new MCP server.
func NewServer(contextService *service.ContextService, port string) *Server {
	return &Server{contextService: contextService, port: port}
}

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}

// TextContent is one text block of a tool-call result.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// JSONRPCRequest represents a JSON-RPC 2.0 request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response.
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler returns the HTTP handler serving the MCP endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.handleRPC)
	mux.HandleFunc("/mcp/sse", s.handleSSE)
	return mux
}

// Start begins the MCP server on the configured port.
func (s *Server) Start() error {
	slog.Info("MCP server starting", "port", s.port)
	return http.ListenAndServe(":"+s.port, s.Handler())
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, -32700, "parse error")
		return
	}

	var result interface{}
	var err error

	switch req.Method {
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, err = s.callTool(r.Context(), req.Params)
	case "initialize":
		result = map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]string{
				"name":    "code-context",
				"version": "1.0.0",
			},
			"capabilities": map[string]interface{}{
				"tools": map[string]bool{"listChanged": false},
			},
		}
	default:
		writeError(w, req.ID, -32601, "method not found")
		return
	}

	if err != nil {
		writeError(w, req.ID, -32602, err.Error())
		return
	}

	writeResult(w, req.ID, result)
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: endpoint\ndata: /mcp\n\n")
	w.(http.Flusher).Flush()

	<-r.Context().Done()
}

func (s *Server) listTools() map[string]interface{} {
	tools := []Tool{
		{
			Name: "get_code_context",
			Description: "Retrieves relevant code context from the codebase based on a code snippet. " +
				"Uses semantic search to find similar code chunks that can help with code completion.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"code_snippet": {"type": "string", "description": "The code snippet to find context for"}
				},
				"required": ["code_snippet"]
			}`),
		},
		{
			Name: "augment_prompt",
			Description: "Augments a code completion prompt with relevant context from the codebase. " +
				"Returns a complete prompt that can be used with an LLM.",
			InputSchema: json.RawMessage(`{
				"type": "object",
				"properties": {
					"code_snippet": {"type": "string", "description": "The code snippet to augment with context"}
				},
				"required": ["code_snippet"]
			}`),
		},
	}
	return map[string]interface{}{"tools": tools}
}

// callTool dispatches a tools/call request. Missing or empty arguments are
// request errors; failures inside the retrieval pipeline are reported as
// text content so the tool call itself still succeeds at the transport
// level.
func (s *Server) callTool(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	var args struct {
		CodeSnippet string `json:"code_snippet"`
	}
	if len(req.Arguments) > 0 {
		if err := json.Unmarshal(req.Arguments, &args); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	switch req.Name {
	case "get_code_context", "augment_prompt":
	default:
		return nil, fmt.Errorf("%w: %s", port.ErrUnknownTool, req.Name)
	}

	if args.CodeSnippet == "" {
		return nil, port.ErrMissingSnippet
	}

	chunks, err := s.contextService.Retrieve(ctx, args.CodeSnippet)

	if req.Name == "get_code_context" {
		if err != nil {
			return textResult(fmt.Sprintf("Error retrieving context: %s", err)), nil
		}
		if len(chunks) == 0 {
			return textResult("No relevant code context found."), nil
		}
		return textResult(formatContext(chunks)), nil
	}

	if err != nil {
		return textResult(fmt.Sprintf("Error augmenting prompt: %s", err)), nil
	}
	return textResult(s.contextService.Augment(args.CodeSnippet, chunks)), nil
}

// formatContext renders retrieved matches as a readable listing with file
// path, similarity to four decimal places, and a fenced content block.
func formatContext(chunks []domain.SimilarChunk) string {
	var sb strings.Builder
	sb.WriteString("# Retrieved Code Context\n\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&sb, "## Context %d\n", i+1)
		fmt.Fprintf(&sb, "**File:** %s\n", chunk.FilePath)
		fmt.Fprintf(&sb, "**Similarity:** %.4f\n\n", chunk.Similarity)
		fmt.Fprintf(&sb, "```\n%s\n```\n\n", chunk.Content)
	}
	return sb.String()
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	resp := JSONRPCResponse{JSONRPC: "2.0", ID: id, Result: result}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	resp := JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func textResult(text string) map[string]interface{} {
	return map[string]interface{}{
		"content": []TextContent{{Type: "text", Text: text}},
	}
}
