package mocks

import (
	"context"

	"challan-reconciler/core/extractor"
	"challan-reconciler/core/reconcile"

	"github.com/stretchr/testify/mock"
)

// Extractor is a mock implementation of extractor.Extractor
type Extractor struct {
	mock.Mock
}

func (m *Extractor) ExtractChallan(ctx context.Context, img extractor.Image) (*reconcile.Challan, error) {
	args := m.Called(ctx, img)
	if c, ok := args.Get(0).(*reconcile.Challan); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Extractor) ExtractSticker(ctx context.Context, img extractor.Image) (*reconcile.Sticker, error) {
	args := m.Called(ctx, img)
	if s, ok := args.Get(0).(*reconcile.Sticker); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
