package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// RunGETRequest fetches a JSON document and decodes it into target. The
// deadline comes from the caller's context; reputation sources pass their
// per-source timeout this way.
func RunGETRequest(ctx context.Context, url string, headers http.Header, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for key, values := range headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
