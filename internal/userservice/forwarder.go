package userservice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilevault/internal/common"
)

const (
	profilePath = "/api/v1/pdf/profile"
	savePath    = "/api/v1/pdf/save"
)

// PDFForwarder calls the document service on behalf of the caller. The
// Authorization header is passed through byte for byte; this service never
// re-signs or re-derives the token.
type PDFForwarder struct {
	baseURL string
	client  *http.Client
}

func NewPDFForwarder(baseURL string, timeout time.Duration) *PDFForwarder {
	return &PDFForwarder{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Forward issues method on path with the caller's Authorization header.
// The caller must close the response body.
func (f *PDFForwarder) Forward(ctx context.Context, method, path, authorization string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build pdf request: %w", err)
	}
	req.Header.Set(common.AuthorizationHeaderName, authorization)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call pdf service: %w", err)
	}
	return resp, nil
}

var relayedHeaders = []string{
	"Content-Type",
	"Content-Disposition",
	"Content-Length",
	"Retry-After",
	"WWW-Authenticate",
}

// relay copies status, content headers and body of resp to w.
func relay(w http.ResponseWriter, resp *http.Response) error {
	for _, h := range relayedHeaders {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, err := io.Copy(w, resp.Body)
	return err
}
