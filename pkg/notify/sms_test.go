package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/pkg/config"
)

func TestFormatPhone(t *testing.T) {
	cases := map[string]string{
		"+8801711111111":  "8801711111111",
		"01711-111 111":   "8801711111111",
		"8801711111111":   "8801711111111",
		" 0 1711 111111 ": "8801711111111",
	}
	for in, want := range cases {
		got, err := FormatPhone(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := FormatPhone("1711111111")
	assert.ErrorIs(t, err, ErrInvalidPhone)
	_, err = FormatPhone("")
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestSMSClientPostsForm(t *testing.T) {
	var form map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		form = map[string]string{"api_key": r.PostForm.Get("api_key"), "to": r.PostForm.Get("to"), "msg": r.PostForm.Get("msg")}
		_, _ = w.Write([]byte(`{"error":0,"msg":"Request successfully submitted"}`))
	}))
	defer server.Close()

	client := NewSMSClient(config.SMSConfig{BaseURL: server.URL, APIKey: "secret"}, nil)
	result, err := client.Send(context.Background(), "8801711111111", "hello")
	require.NoError(t, err)
	assert.Contains(t, result, "successfully")
	assert.Equal(t, map[string]string{"api_key": "secret", "to": "8801711111111", "msg": "hello"}, form)
}

func TestSMSClientReportsGatewayErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewSMSClient(config.SMSConfig{BaseURL: server.URL}, nil)
	_, err := client.Send(context.Background(), "8801711111111", "hello")
	assert.Error(t, err)
}

func TestLogSenderAlwaysSucceeds(t *testing.T) {
	result, err := NewLogSender(nil).Send(context.Background(), "8801711111111", "hello")
	require.NoError(t, err)
	assert.Equal(t, "logged", result)
}
