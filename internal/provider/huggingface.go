package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"modelmind/internal/models"
)

// HuggingFaceBaseURL is the hosted inference endpoint.
const HuggingFaceBaseURL = "https://api-inference.huggingface.co"

const maxErrorBody = 512

var dataPrefix = []byte("data:")

// HTTPError is returned when a raw HTTP backend answers with a non-2xx status.
type HTTPError struct {
	Provider   string
	StatusCode int
	// Body is a truncated copy of the response body.
	Body string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s: http %d %s", e.Provider, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// HuggingFaceAdapter reads the text-generation event stream line by line.
type HuggingFaceAdapter struct {
	spec       models.ProviderSpec
	baseURL    string
	httpClient *http.Client
}

// NewHuggingFaceAdapter creates a Hugging Face adapter for spec.
func NewHuggingFaceAdapter(spec models.ProviderSpec, httpClient *http.Client) *HuggingFaceAdapter {
	baseURL := HuggingFaceBaseURL
	if spec.BaseURL != "" {
		baseURL = spec.BaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HuggingFaceAdapter{
		spec:       spec,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (a *HuggingFaceAdapter) Name() string { return a.spec.Name }
func (a *HuggingFaceAdapter) Kind() string { return a.spec.Kind }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Stream     bool         `json:"stream"`
}

type hfParameters struct {
	Temperature float64 `json:"temperature"`
}

type hfEvent struct {
	Token struct {
		Text string `json:"text"`
	} `json:"token"`
}

func (a *HuggingFaceAdapter) Stream(ctx context.Context, req Request) (Stream, error) {
	inputs := req.Prompt
	if req.System != "" {
		inputs = req.System + "\n\n" + req.Prompt
	}

	body, err := json.Marshal(hfRequest{
		Inputs: inputs,
		// The endpoint rejects a zero temperature.
		Parameters: hfParameters{Temperature: clampTemperature(req.Temperature, 0.1, 2)},
		Stream:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/models/"+req.Model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.spec.Credential)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{
			Provider:   a.spec.Name,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	return &lineStream{body: resp.Body, reader: bufio.NewReaderSize(resp.Body, 64*1024)}, nil
}

type lineStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	done   bool
}

func (s *lineStream) Recv() (string, error) {
	for !s.done {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("reading stream: %w", err)
			}
			s.done = true
		}
		if text, ok := parseDataLine(line); ok {
			return text, nil
		}
	}
	return "", io.EOF
}

func (s *lineStream) Close() error {
	return s.body.Close()
}

// parseDataLine extracts token.text from a "data:" line. Keep-alives, other
// fields and undecodable payloads are skipped.
func parseDataLine(line []byte) (string, bool) {
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, dataPrefix) {
		return "", false
	}

	var ev hfEvent
	if err := json.Unmarshal(bytes.TrimSpace(line[len(dataPrefix):]), &ev); err != nil {
		return "", false
	}
	if ev.Token.Text == "" {
		return "", false
	}
	return ev.Token.Text, true
}
