package aiservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	applog "candidate-match/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20

// doJSON sends body (nil for GET) to url and returns the raw response body.
// Non-2xx answers are errors; the body is still returned for logging.
func doJSON(ctx context.Context, client *http.Client, method, url string, body any, lg *zap.Logger) ([]byte, int, error) {
	reqID := uuid.NewString()
	start := time.Now()
	log := lg.With(zap.String("req_id", reqID), zap.String("method", method), zap.String("url", url))

	var reader io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			log.Error("ai.http.encode_error", zap.Error(err))
			return nil, 0, fmt.Errorf("encode json: %w", err)
		}
		reader = bytes.NewReader(bs)
		log = log.With(zap.Int("content_length", len(bs)))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		log.Error("ai.http.build_request_error", zap.Error(err))
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug("ai.http.request")

	resp, err := client.Do(req)
	if err != nil {
		log.Warn("ai.http.send_error", zap.Error(err), zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))
		return nil, 0, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warn("ai.http.response_body_close_error", zap.Error(err))
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	log.Info("ai.http.response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)

	if resp.StatusCode/100 != 2 {
		log.Warn("ai.http.non_2xx", zap.Int("status", resp.StatusCode), zap.String("body", applog.Truncate(string(raw), 256)))
		return raw, resp.StatusCode, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
