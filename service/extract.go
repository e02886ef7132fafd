package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/elisa-rivadeneira/gestor-documentario/config"
	"github.com/elisa-rivadeneira/gestor-documentario/model"
	"github.com/elisa-rivadeneira/gestor-documentario/pkg/logger"
)

// ExtractService calls the AI field-extraction API to prefill registration
// forms from an uploaded PDF.
type ExtractService struct {
	config     *config.ExtractorConfig
	httpClient *http.Client
}

// extractRequest is the request to the extraction API.
type extractRequest struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	Model    string `json:"model,omitempty"`
}

// extractResponse is the extraction API envelope.
type extractResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    struct {
		OfficeNumber    string `json:"office_number"`
		Date            string `json:"date"`
		Sender          string `json:"sender"`
		Recipient       string `json:"recipient"`
		Subject         string `json:"subject"`
		Summary         string `json:"summary"`
		ReferenceNumber string `json:"reference_number"`
		Text            string `json:"text"` // raw extracted text, used for the number fallback
	} `json:"data"`
}

func NewExtractService(cfg *config.ExtractorConfig) *ExtractService {
	return &ExtractService{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Analyze sends the document URL to the extraction API and returns the
// best-effort structured guess. A failed analysis is reported in the result's
// Success/Message pair, not as an error, so the caller can surface it to the
// form as-is; only transport and protocol problems error.
func (s *ExtractService) Analyze(ctx context.Context, fileURL, filename string) (*model.Extraction, error) {
	reqBody := extractRequest{
		URL:      fileURL,
		Filename: filename,
		Model:    s.config.Model,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.APIURL+"/v1/extract", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.APIToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result extractResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, body: %s", err, string(body))
	}

	if result.Code != 0 {
		return &model.Extraction{
			Success: false,
			Message: result.Message,
		}, nil
	}

	extraction := &model.Extraction{
		OfficeNumber:    strings.TrimSpace(result.Data.OfficeNumber),
		Date:            normalizeDate(result.Data.Date),
		Sender:          cleanField(result.Data.Sender),
		Recipient:       cleanField(result.Data.Recipient),
		Subject:         cleanField(result.Data.Subject),
		Summary:         cleanField(result.Data.Summary),
		ReferenceNumber: strings.TrimSpace(result.Data.ReferenceNumber),
		Success:         true,
	}

	// Office numbers are 5-6 digit correlatives (3 for NEMAEC letters). When
	// the model misses or truncates one, recover it from the document header.
	if !validOfficeNumber(extraction.OfficeNumber) {
		if recovered := OfficeNumberFromText(result.Data.Text); recovered != "" {
			logger.Info(ctx, "office number recovered from header text",
				"model_guess", extraction.OfficeNumber,
				"recovered", recovered,
			)
			extraction.OfficeNumber = recovered
			extraction.Message = "office number recovered from header text"
		}
	}

	return extraction, nil
}

var (
	officeDigitsRe = regexp.MustCompile(`\d{5,6}`)
	shortDigitsRe  = regexp.MustCompile(`\d{3}`)
	headerNumberRe = regexp.MustCompile(`(?i)(OFICIO|CARTA)\s*(?:N[°º]?\.?)?\s*[:\s]*([\w\d/.-]*\d{3,6}[\w\d/.-]*)`)
)

// header sections below these markers reference other documents; numbers
// found there belong to those documents, not this one.
var headerStopMarkers = []string{
	"Referencia", "REFERENCIA", "Señor", "SEÑOR", "Señora", "SEÑORA",
	"De mi consideración",
}

func validOfficeNumber(number string) bool {
	if officeDigitsRe.MatchString(number) {
		return true
	}
	return strings.Contains(strings.ToUpper(number), "NEMAEC") && shortDigitsRe.MatchString(number)
}

// OfficeNumberFromText extracts the office or letter number from the header
// portion of a document's text.
func OfficeNumberFromText(text string) string {
	if text == "" {
		return ""
	}

	header := text
	for _, marker := range headerStopMarkers {
		if pos := strings.Index(header, marker); pos > 0 {
			header = header[:pos]
		}
	}

	m := headerNumberRe.FindStringSubmatch(header)
	if m == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(m[1])) + " " + strings.TrimSpace(m[2])
}

// normalizeDate keeps only well-formed YYYY-MM-DD prefixes; the model
// sometimes answers with a sentence or "No especificado".
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 10 {
		return ""
	}
	candidate := s[:10]
	if _, err := time.Parse("2006-01-02", candidate); err != nil {
		return ""
	}
	return candidate
}

func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "No especificado") {
		return ""
	}
	return s
}
