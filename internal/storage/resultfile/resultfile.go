// Package resultfile implements an append-only msgpack archive of result
// rows, useful as a durable record when no database is configured.
package resultfile

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/glaciersat/snowline/internal/log"
	"github.com/glaciersat/snowline/internal/types"
)

// Storage appends msgpack-encoded result rows to a file
type Storage struct {
	f   *os.File
	enc *msgpack.Encoder
	mu  sync.Mutex
}

// StartStorageEngine creates a goroutine loop to receive result rows and
// append them to the archive
func (s *Storage) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.TSLAResult {
	log.Info("starting result archive storage engine...")
	resultChan := make(chan types.TSLAResult, 10)
	wg.Add(1)
	go s.processResults(wg, resultChan)
	return resultChan
}

// processResults runs until the result channel is closed, appending every row
// it receives. Termination is by channel closure so buffered rows are never
// abandoned on shutdown.
func (s *Storage) processResults(wg *sync.WaitGroup, rchan <-chan types.TSLAResult) {
	defer wg.Done()

	for r := range rchan {
		if err := s.StoreResult(r); err != nil {
			log.Error("could not append TSLA result to archive:", err)
		}
	}
	log.Info("result channel closed, closing result archive")
	s.f.Close()
}

// StoreResult appends one result row to the archive
func (s *Storage) StoreResult(r types.TSLAResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(&r); err != nil {
		return fmt.Errorf("encode result for %s/%s: %w", r.RGIID, r.SceneID, err)
	}
	return nil
}

// New sets up a new result archive storage backend
func New(c *types.Config) (*Storage, error) {
	f, err := os.OpenFile(c.Storage.ResultFile.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open result archive %s: %w", c.Storage.ResultFile.Path, err)
	}
	return &Storage{f: f, enc: msgpack.NewEncoder(f)}, nil
}
