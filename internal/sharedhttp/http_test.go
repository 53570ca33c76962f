package sharedhttp

import (
	"net/http"
	"testing"
	"time"

	"github.com/avast/retry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatusCode(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantErr       bool
		wantRetryable bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "forbidden", status: http.StatusForbidden, wantErr: true},
		{name: "not found", status: http.StatusNotFound, wantErr: true, wantRetryable: true},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: true, wantRetryable: true},
		{name: "bad gateway", status: http.StatusBadGateway, wantErr: true, wantRetryable: true},
		{name: "teapot", status: http.StatusTeapot, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStatusCode(tt.status)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			assert.Equal(t, tt.wantRetryable, retry.IsRecoverable(err))
		})
	}
}

func TestNewTransport(t *testing.T) {
	direct, err := NewTransport("", false)
	require.NoError(t, err)
	assert.Same(t, Transport, direct)

	rt, err := NewTransport("127.0.0.1:9050", false)
	require.NoError(t, err)

	proxied, ok := rt.(*http.Transport)
	require.True(t, ok)
	assert.NotSame(t, Transport, proxied)
	assert.Nil(t, proxied.Proxy)
	assert.NotNil(t, proxied.DialContext)
	assert.NotNil(t, Transport.Proxy)

	bypass, err := NewTransport("", true)
	require.NoError(t, err)
	assert.NotNil(t, bypass)
	assert.NotEqual(t, Transport, bypass)
}

func TestNewClient(t *testing.T) {
	client := NewClient(5*time.Second, nil)
	assert.Same(t, Transport, client.Transport)
	assert.Equal(t, 5*time.Second, client.Timeout)

	custom := &http.Transport{}
	assert.Same(t, custom, NewClient(time.Second, custom).Transport)
}
