package whatsapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/raksha-app/raksha/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) shared.WhatsAppConfig {
	return shared.WhatsAppConfig{
		Token:         "EAAGt0ken",
		PhoneNumberID: "123456",
		APIBaseURL:    baseURL,
	}
}

func textMessage(to string) *Message {
	return &Message{
		MessagingProduct: MessagingProduct,
		To:               to,
		Type:             TypeText,
		Text:             &TextPayload{Body: "help"},
	}
}

func TestSendSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody Message

	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messaging_product":"whatsapp","messages":[{"id":"wamid.ABC123"}]}`))
	}))
	defer testServer.Close()

	client := NewClient(testConfig(testServer.URL))
	resp, err := client.Send(context.Background(), textMessage("919811111111"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "wamid.ABC123", resp.MessageID)

	assert.Equal(t, "/123456/messages", gotPath)
	assert.Equal(t, "Bearer EAAGt0ken", gotAuth)
	assert.Equal(t, "whatsapp", gotBody.MessagingProduct)
	assert.Equal(t, "919811111111", gotBody.To)
	assert.Equal(t, TypeText, gotBody.Type)
}

func TestSendSuccessWithUnparseableBody(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer testServer.Close()

	client := NewClient(testConfig(testServer.URL))
	resp, err := client.Send(context.Background(), textMessage("919811111111"))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.MessageID)
}

func TestSendAPIError(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Recipient phone number not in allowed list","type":"OAuthException","code":131030}}`))
	}))
	defer testServer.Close()

	client := NewClient(testConfig(testServer.URL))
	resp, err := client.Send(context.Background(), textMessage("919811111111"))

	assert.Nil(t, resp)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, CodeRecipientNotAllowed, apiErr.Code)
	assert.Equal(t, "Recipient phone number not in allowed list", apiErr.Message)

	assert.True(t, IsRecipientNotAllowed(err))
	assert.Equal(t, http.StatusBadRequest, ErrStatusCode(err))
}

func TestSendAPIErrorWithNonJSONBody(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer testServer.Close()

	client := NewClient(testConfig(testServer.URL))
	_, err := client.Send(context.Background(), textMessage("919811111111"))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, 0, apiErr.Code)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
	assert.False(t, IsRecipientNotAllowed(err))
}

func TestErrStatusCodeOnTransportError(t *testing.T) {
	assert.Equal(t, 0, ErrStatusCode(errors.New("connection refused")))
	assert.False(t, IsRecipientNotAllowed(errors.New("connection refused")))
}
