// Package remote write-through-mirrors local mutations to an upstream
// backend API. The local store is authoritative: every mirror call is
// detached and best-effort, with failures logged and dropped. No retries
// and no rollback, so delivery toward the backend is at most once.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const requestTimeout = 5 * time.Second

type Mirror struct {
	baseURL string
	client  *http.Client
}

// New returns a mirror for the given base URL, or nil when the URL is
// empty. A nil mirror is safe to call; every method is a no-op.
func New(baseURL string) *Mirror {
	if baseURL == "" {
		return nil
	}
	return &Mirror{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Create mirrors a create of the given resource.
func (m *Mirror) Create(resource string, payload interface{}) {
	if m == nil {
		return
	}
	go m.do(http.MethodPost, fmt.Sprintf("%s/api/%s", m.baseURL, resource), payload)
}

// Update mirrors a partial update of the given resource record.
func (m *Mirror) Update(resource, id string, payload interface{}) {
	if m == nil {
		return
	}
	go m.do(http.MethodPut, fmt.Sprintf("%s/api/%s/%s", m.baseURL, resource, id), payload)
}

// Delete mirrors a delete of the given resource record.
func (m *Mirror) Delete(resource, id string) {
	if m == nil {
		return
	}
	go m.do(http.MethodDelete, fmt.Sprintf("%s/api/%s/%s", m.baseURL, resource, id), nil)
}

func (m *Mirror) do(method, url string, payload interface{}) {
	var body *bytes.Buffer = bytes.NewBuffer(nil)
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			logrus.WithError(err).WithField("url", url).Debug("Mirror payload marshal failed, dropping.")
			return
		}
		body = bytes.NewBuffer(raw)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		logrus.WithError(err).WithField("url", url).Debug("Mirror request build failed, dropping.")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		logrus.WithError(err).WithField("url", url).Debug("Mirror write failed, dropping.")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		logrus.WithFields(logrus.Fields{
			"url":    url,
			"status": resp.StatusCode,
		}).Debug("Mirror write rejected upstream, dropping.")
	}
}
