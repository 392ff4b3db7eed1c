package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/startuphub/backend/internal/pubsub"
)

type FabricMock struct {
	mock.Mock
}

func (m *FabricMock) Join(group string, sub pubsub.Subscriber) {
	m.Called(group, sub)
}

func (m *FabricMock) Leave(group string, sub pubsub.Subscriber) {
	m.Called(group, sub)
}

func (m *FabricMock) Publish(ctx context.Context, group, senderID string, data []byte) error {
	args := m.Called(ctx, group, senderID, data)
	return args.Error(0)
}

type PushSenderMock struct {
	mock.Mock
}

func (m *PushSenderMock) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	args := m.Called(ctx, deviceToken, title, body, data)
	return args.Error(0)
}
