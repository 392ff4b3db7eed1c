package pubsub

import (
	"context"
	"sync"
)

// MemoryFabric delivers envelopes synchronously within a single process.
// Used in tests and single-instance deployments without Redis.
type MemoryFabric struct {
	mu  sync.Mutex
	reg *registry
}

func NewMemoryFabric() *MemoryFabric {
	return &MemoryFabric{reg: newRegistry()}
}

func (f *MemoryFabric) Join(group string, sub Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reg.join(group, sub)
}

func (f *MemoryFabric) Leave(group string, sub Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reg.leave(group, sub)
}

func (f *MemoryFabric) Publish(_ context.Context, group, senderID string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reg.deliver(&Envelope{Group: group, SenderID: senderID, Data: data})
	return nil
}
