// Package storage defines interfaces and implementations for TSLA result
// sink backends.
package storage

import (
	"context"
	"sync"

	"github.com/glaciersat/snowline/internal/types"
)

// EngineInterface is an interface that provides a few standardized methods
// for various result sink backends
type EngineInterface interface {
	StartStorageEngine(context.Context, *sync.WaitGroup) chan<- types.TSLAResult
}
