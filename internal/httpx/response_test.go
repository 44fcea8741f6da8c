package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "Email already exist")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"detail":"Email already exist"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "ok", body: `{"email":"a@b.io"}`},
		{name: "empty", body: ``, wantErr: true},
		{name: "malformed", body: `{"email":`, wantErr: true},
		{name: "two objects", body: `{"email":"a"}{"email":"b"}`, wantErr: true},
		{name: "too large", body: `{"email":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), r, &p)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a@b.io", p.Email)
		})
	}
}
