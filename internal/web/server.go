// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"payee-scan/internal/core"
	"payee-scan/internal/observability"
	"payee-scan/internal/rules"
	"payee-scan/internal/version"
)

// RequestIDHeader carries the request id in and out of the server
const RequestIDHeader = "X-Request-ID"

const defaultMaxBodyBytes = 64 << 10

// WebServer serves the extraction engine over HTTP
type WebServer struct {
	port         string
	engine       *core.Engine
	observer     *observability.StandardObserver
	maxBodyBytes int64
	out          io.Writer
	mux          *http.ServeMux
	server       *http.Server
}

// ParseRequest is the body of POST /api/parse-clipboard
type ParseRequest struct {
	Clipboard   string `json:"clipboard"`
	CountryCode string `json:"countryCode"`
	Mode        string `json:"mode,omitempty"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// CountryInfo summarizes one registry entry for GET /api/countries
type CountryInfo struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	CallingCode    string `json:"calling_code,omitempty"`
	PhoneLengths   []int  `json:"phone_lengths,omitempty"`
	AccountKind    string `json:"account_kind,omitempty"`
	AccountLengths []int  `json:"account_lengths,omitempty"`
	Charset        string `json:"charset,omitempty"`
	Checksum       string `json:"checksum,omitempty"`
}

// NewWebServer creates a new web server instance. A maxBodyBytes of zero
// or less selects 64 KiB.
func NewWebServer(port string, engine *core.Engine, maxBodyBytes int64, out io.Writer) *WebServer {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	ws := &WebServer{
		port:         port,
		engine:       engine,
		observer:     observability.NewStandardObserver(observability.ObservabilityOff, io.Discard),
		maxBodyBytes: maxBodyBytes,
		out:          out,
		mux:          http.NewServeMux(),
	}
	ws.setupRoutes()
	return ws
}

// SetObserver sets the observability component
func (ws *WebServer) SetObserver(observer *observability.StandardObserver) {
	if observer != nil {
		ws.observer = observer
	}
}

// GetComponentName returns the component identifier
func (ws *WebServer) GetComponentName() string {
	return "web_server"
}

// Handler returns the routed handler, mainly for tests
func (ws *WebServer) Handler() http.Handler {
	return ws.mux
}

// Start listens on the configured port, moving up to nine ports higher when
// it is taken, and serves until ctx is cancelled
func (ws *WebServer) Start(ctx context.Context) error {
	base, err := strconv.Atoi(ws.port)
	if err != nil || base < 0 || base > 65535 {
		return fmt.Errorf("invalid port %q", ws.port)
	}

	var listener net.Listener
	var lastError error
	for i := 0; i < 10 && base+i <= 65535; i++ {
		listener, lastError = net.Listen("tcp", ":"+strconv.Itoa(base+i))
		if lastError == nil {
			break
		}
		if i == 0 {
			fmt.Fprintf(ws.out, "Port %d is not available, trying alternative ports...\n", base)
		}
	}
	if listener == nil {
		return fmt.Errorf("could not find an available port in range %d-%d\n"+
			"Last error: %v\n"+
			"Troubleshooting:\n"+
			"  1. Check if other services are using these ports\n"+
			"  2. Try a specific port with --port <number>\n"+
			"  3. Ensure you have permission to bind to the requested port", base, base+9, lastError)
	}

	port := strconv.Itoa(listener.Addr().(*net.TCPAddr).Port)
	ws.server = ws.createSecureServer(port)

	fmt.Fprintf(ws.out, "Payee Scan API started on port %s\n", port)
	fmt.Fprintf(ws.out, "  POST http://localhost:%s/api/parse-clipboard\n", port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- ws.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ws.server.Shutdown(shutdownCtx)
	}
}

// Stop stops the web server
func (ws *WebServer) Stop() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

func (ws *WebServer) setupRoutes() {
	ws.mux.HandleFunc("/", ws.serveHome)
	ws.mux.HandleFunc("/health", ws.handleHealth)
	ws.mux.HandleFunc("/api/parse-clipboard", ws.handleParseClipboard)
	ws.mux.HandleFunc("/api/countries", ws.handleCountries)
}

// createSecureServer creates an HTTP server with security timeouts
func (ws *WebServer) createSecureServer(port string) *http.Server {
	return &http.Server{
		Addr:    ":" + port,
		Handler: ws.mux,
		// Timeout for reading request headers (prevents slow header attacks)
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// serveHome answers the root path with a short usage page
func (ws *WebServer) serveHome(responseWriter http.ResponseWriter, request *http.Request) {
	if request.URL.Path != "/" {
		ws.sendErrorWithStatus(responseWriter, "Not found", http.StatusNotFound)
		return
	}
	if request.Method != http.MethodGet {
		ws.methodNotAllowed(responseWriter, http.MethodGet)
		return
	}
	responseWriter.Header().Set("Content-Type", "text/html; charset=utf-8")
	responseWriter.WriteHeader(http.StatusOK)
	io.WriteString(responseWriter, homePage)
}

const homePage = `<!DOCTYPE html>
<html><head><title>Payee Scan</title></head>
<body><h1>Payee Scan</h1>
<p>POST <code>/api/parse-clipboard</code> with <code>{"clipboard": "...", "countryCode": "NE", "mode": "phone"}</code>.</p>
<p>GET <code>/api/countries</code> lists the supported countries.</p>
</body></html>`

// handleHealth provides a health check endpoint with version information
func (ws *WebServer) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		ws.methodNotAllowed(responseWriter, http.MethodGet)
		return
	}

	versionInfo := version.Full()
	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "payee-scan",
		"version":   versionInfo["version"],
		"countries": ws.engine.Registry().Len(),
		"build_info": map[string]interface{}{
			"version":       versionInfo["version"],
			"rules_version": versionInfo["rulesVersion"],
			"commit":        versionInfo["commit"],
			"build_date":    versionInfo["buildDate"],
			"go_version":    versionInfo["goVersion"],
			"platform":      versionInfo["platform"],
		},
	}
	ws.sendJSON(responseWriter, http.StatusOK, healthData)
}

// handleParseClipboard extracts the payee record from one pasted message
func (ws *WebServer) handleParseClipboard(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		ws.methodNotAllowed(responseWriter, http.MethodPost)
		return
	}

	requestID := request.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = observability.NewRequestID()
	}
	responseWriter.Header().Set(RequestIDHeader, sanitizeUserInput(requestID, 64))
	observer := ws.observer.WithRequestID(requestID)
	finishTiming := observer.StartTiming(ws.GetComponentName(), "parse_clipboard", request.RemoteAddr)

	status, result, err := ws.parse(responseWriter, request, ws.engine.WithObserver(observer))
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, err.Error(), status)
	} else {
		ws.sendJSON(responseWriter, status, result)
	}

	metadata := map[string]interface{}{"status": status}
	if err != nil {
		metadata["error"] = err.Error()
	} else {
		metadata["validation_error"] = result.ValidationError
	}
	finishTiming(err == nil, metadata)
}

func (ws *WebServer) parse(responseWriter http.ResponseWriter, request *http.Request, engine *core.Engine) (int, core.Result, error) {
	body := http.MaxBytesReader(responseWriter, request.Body, ws.maxBodyBytes)
	var req ParseRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, core.Result{}, fmt.Errorf("Request body exceeds %d bytes", ws.maxBodyBytes)
		}
		return http.StatusBadRequest, core.Result{}, errors.New("Invalid JSON body")
	}

	if req.Clipboard == "" || strings.TrimSpace(req.CountryCode) == "" {
		return http.StatusBadRequest, core.Result{}, errors.New("Both clipboard and countryCode are required")
	}

	mode := core.ModeAccount
	if req.Mode != "" {
		parsed, err := core.ParseMode(req.Mode)
		if err != nil {
			return http.StatusBadRequest, core.Result{}, fmt.Errorf("Invalid mode %q: must be phone or account", sanitizeUserInput(req.Mode, 32))
		}
		mode = parsed
	}

	result, err := engine.Extract(core.Request{Text: req.Clipboard, CountryCode: req.CountryCode, Mode: mode})
	if err != nil {
		if errors.Is(err, core.ErrMalformedInput) {
			return http.StatusBadRequest, core.Result{}, err
		}
		return http.StatusInternalServerError, core.Result{}, fmt.Errorf("extraction failed: %w", err)
	}
	return http.StatusOK, result, nil
}

// handleCountries lists the registry
func (ws *WebServer) handleCountries(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodGet {
		ws.methodNotAllowed(responseWriter, http.MethodGet)
		return
	}

	countries := ws.engine.Registry().Countries()
	infos := make([]CountryInfo, 0, len(countries))
	for _, c := range countries {
		infos = append(infos, countryInfo(c))
	}
	ws.sendJSON(responseWriter, http.StatusOK, infos)
}

func countryInfo(c rules.Country) CountryInfo {
	info := CountryInfo{Code: c.Code, Name: c.Name}
	if c.Phone != nil {
		info.CallingCode = c.Phone.CallingCode
		info.PhoneLengths = c.Phone.NSNLengths
	}
	if c.Account != nil {
		info.AccountKind = string(c.Account.Kind)
		info.AccountLengths = c.Account.Lengths()
		info.Charset = string(c.Account.Charset)
		info.Checksum = string(c.Account.Checksum)
	}
	return info
}

func (ws *WebServer) sendJSON(responseWriter http.ResponseWriter, statusCode int, payload interface{}) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)
	json.NewEncoder(responseWriter).Encode(payload)
}

func (ws *WebServer) methodNotAllowed(responseWriter http.ResponseWriter, allowed string) {
	responseWriter.Header().Set("Allow", allowed)
	ws.sendErrorWithStatus(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
}

// sendErrorWithStatus sends an error response with a specific HTTP status code
func (ws *WebServer) sendErrorWithStatus(responseWriter http.ResponseWriter, message string, statusCode int) {
	ws.sendJSON(responseWriter, statusCode, ErrorResponse{
		Error: message,
		Hint:  ws.troubleshootingHint(message, statusCode),
	})
}

// troubleshootingHint returns a tip for common client mistakes
func (ws *WebServer) troubleshootingHint(message string, statusCode int) string {
	switch {
	case strings.Contains(message, "Invalid JSON body"):
		return "Send a JSON object with clipboard, countryCode and optional mode fields"
	case strings.Contains(message, "required"):
		return "clipboard must be non-empty and countryCode must be an ISO 3166-1 alpha-2 code"
	case strings.Contains(message, "Invalid mode"):
		return "Omit mode for account extraction or pass \"phone\""
	case statusCode == http.StatusRequestEntityTooLarge:
		return "Raise web.max_body_bytes in the configuration file to accept larger messages"
	case statusCode == http.StatusInternalServerError:
		return "Check server logs for detailed error information"
	default:
		return ""
	}
}

// sanitizeUserInput removes control and markup characters from values that
// are echoed back to the client
func sanitizeUserInput(input string, maxLength int) string {
	sanitized := strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		switch r {
		case '<', '>', '"', '\'', '&':
			return -1
		}
		return r
	}, input)

	if utf8.RuneCountInString(sanitized) > maxLength {
		runes := []rune(sanitized)
		sanitized = string(runes[:maxLength]) + "..."
	}
	return sanitized
}
