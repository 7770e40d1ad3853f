package httpapi

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/rise-and-shine/filestash/pkg/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basic(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func TestParseBasicAuth(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		email    string
		password string
		ok       bool
	}{
		{"valid", basic("bob@dylan.com", "toto1234!"), "bob@dylan.com", "toto1234!", true},
		{"password with colon", basic("bob@dylan.com", "a:b:c"), "bob@dylan.com", "a:b:c", true},
		{"empty password", basic("bob@dylan.com", ""), "bob@dylan.com", "", true},
		{"missing prefix", "bob@dylan.com:pw", "", "", false},
		{"wrong scheme", "Bearer abc", "", "", false},
		{"bad base64", "Basic %%%", "", "", false},
		{"no separator", "Basic " + base64.StdEncoding.EncodeToString([]byte("nobody")), "", "", false},
		{"empty email", basic("", "pw"), "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, password, ok := parseBasicAuth(tt.header)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.email, email)
				assert.Equal(t, tt.password, password)
			}
		})
	}
}

func TestRequestUserID(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		ctx := meta.InjectMetaToContext(context.Background(), map[meta.ContextKey]string{
			meta.RequestUserID: "42",
		})

		userID, err := requestUserID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(42), userID)
	})

	t.Run("absent", func(t *testing.T) {
		_, err := requestUserID(context.Background())
		assert.Error(t, err)
	})
}

func TestOptionalUserID(t *testing.T) {
	assert.Nil(t, optionalUserID(context.Background()))

	ctx := meta.InjectMetaToContext(context.Background(), map[meta.ContextKey]string{
		meta.RequestUserID: "7",
	})
	got := optionalUserID(ctx)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), *got)
}
