package gdal

import (
	"context"
	"sync"
)

var (
	clientMu sync.Mutex
	client   *Client
)

// Initialize creates the shared docker client. Calling it again while a
// client is held is a no-op.
func Initialize(ctx context.Context) error {
	clientMu.Lock()
	defer clientMu.Unlock()

	if client != nil {
		return nil
	}

	c, err := NewClient(ctx)
	if err != nil {
		return err
	}
	client = c
	return nil
}

// GetClient returns the shared docker client, or nil before Initialize.
func GetClient() *Client {
	clientMu.Lock()
	defer clientMu.Unlock()
	return client
}

// Shutdown releases the shared docker client.
func Shutdown() {
	clientMu.Lock()
	defer clientMu.Unlock()

	if client != nil {
		_ = client.Close()
		client = nil
	}
}
