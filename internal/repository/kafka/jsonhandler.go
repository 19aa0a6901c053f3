package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrPoison marks a message that can never be handled; the consumer commits past it.
var ErrPoison = errors.New("poison message")

func JSONHandler[M any](handle func(context.Context, []byte, *M) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		var msg M
		if err := json.Unmarshal(value, &msg); err != nil {
			return fmt.Errorf("%w: decode %T: %v", ErrPoison, msg, err)
		}
		return handle(ctx, key, &msg)
	}
}
