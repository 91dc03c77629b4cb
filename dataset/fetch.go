package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDatasetBytes caps a downloaded dataset.
const maxDatasetBytes = 8 << 20

var httpClient = &http.Client{Timeout: 30 * time.Second}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDatasetBytes {
		return nil, fmt.Errorf("dataset larger than %d bytes", maxDatasetBytes)
	}
	return data, nil
}
