package testutil

import (
	"context"

	"github.com/complysense/complysense/internal/types"
)

func SetupContext() context.Context {
	return types.SetRequestID(context.Background(), types.GenerateUUID())
}
