package common

import (
	"fmt"

	"github.com/jonesrussell/shogo/internal/store"
)

// CreateSink builds the configured result sink. Callers own Close.
func CreateSink(deps CommandDeps) (store.Sink, error) {
	sink, err := store.New(&deps.Config.Storage, deps.Logger)
	if err != nil {
		return nil, fmt.Errorf("create %s sink: %w", deps.Config.Storage.Backend, err)
	}
	return sink, nil
}
