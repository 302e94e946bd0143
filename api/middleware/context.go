package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxMerchantID contextKey = "merchant_id"

// MerchantIDFromContext returns the merchant resolved by MerchantContext.
func MerchantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	v, ok := ctx.Value(ctxMerchantID).(uuid.UUID)
	return v, ok && v != uuid.Nil
}

// WithMerchantID injects the merchant identifier into the context for downstream handlers.
func WithMerchantID(ctx context.Context, merchantID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxMerchantID, merchantID)
}
