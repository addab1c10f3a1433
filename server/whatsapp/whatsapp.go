package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/raksha-app/raksha/shared"
)

const (
	DefaultBaseURL   = "https://graph.facebook.com/v18.0"
	MessagingProduct = "whatsapp"

	TypeLocation = "location"
	TypeText     = "text"

	// CodeRecipientNotAllowed is the provider's structured error code for a
	// recipient that has not opted in to receive messages from this sender.
	CodeRecipientNotAllowed = 131030

	defaultRequestTimeout = 15 * time.Second
)

// Message is the request body POSTed to the per-sender-id messages
// endpoint. Exactly one of Location/Text is set, matching Type.
type Message struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Location         *LocationPayload `json:"location,omitempty"`
	Text             *TextPayload     `json:"text,omitempty"`
}

// LocationPayload coordinates are strings on the wire.
type LocationPayload struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Name      string `json:"name"`
	Address   string `json:"address"`
}

type TextPayload struct {
	Body string `json:"body"`
}

type SendResponse struct {
	StatusCode int
	MessageID  string
}

// APIError is a non-2xx provider response. Code is the provider's
// structured error code when the body carried one, 0 otherwise.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("whatsapp: status=%v code=%v: %v", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("whatsapp: status=%v", e.StatusCode)
}

// IsRecipientNotAllowed reports whether err is the provider's well-known
// "recipient not opted in" rejection.
func IsRecipientNotAllowed(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeRecipientNotAllowed
}

// ErrStatusCode returns the provider status carried by err, or 0 when the
// call never got a response (network error, timeout).
func ErrStatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type ClientWrapper struct {
	httpClient *http.Client
	config     shared.WhatsAppConfig
	baseURL    string
}

func NewClient(config shared.WhatsAppConfig) *ClientWrapper {
	baseURL := config.APIBaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &ClientWrapper{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		config:     config,
		baseURL:    baseURL,
	}
}

// Send posts one message to the provider. A 2xx response returns the
// provider message id; anything else returns an *APIError (or the raw
// transport error when no response was received).
func (cw *ClientWrapper) Send(ctx context.Context, msg *Message) (*SendResponse, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%v/%v/messages", cw.baseURL, cw.config.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %v", cw.config.Token))
	req.Header.Set("Content-Type", "application/json")

	resp, err := cw.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiErrorFromResponse(resp.StatusCode, respBody)
	}

	parsed := struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}{}
	// A 2xx with an unparseable body still counts as delivered to the provider
	_ = json.Unmarshal(respBody, &parsed)

	sendResponse := &SendResponse{StatusCode: resp.StatusCode}
	if len(parsed.Messages) > 0 {
		sendResponse.MessageID = parsed.Messages[0].ID
	}

	return sendResponse, nil
}

func apiErrorFromResponse(statusCode int, body []byte) *APIError {
	parsed := struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}{}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return &APIError{StatusCode: statusCode, Message: string(body)}
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       parsed.Error.Code,
		Message:    parsed.Error.Message,
	}
}
