package managers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glaciersat/snowline/internal/types"
)

// slowSink records every row it receives, with a per-row delay simulating a
// database that cannot keep pace with the distributor.
type slowSink struct {
	delay time.Duration

	mu   sync.Mutex
	rows []types.TSLAResult
}

func (s *slowSink) StartStorageEngine(ctx context.Context, wg *sync.WaitGroup) chan<- types.TSLAResult {
	rchan := make(chan types.TSLAResult, 10)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for r := range rchan {
			time.Sleep(s.delay)
			s.mu.Lock()
			s.rows = append(s.rows, r)
			s.mu.Unlock()
		}
	}()
	return rchan
}

func (s *slowSink) stored() []types.TSLAResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.TSLAResult, len(s.rows))
	copy(out, s.rows)
	return out
}

func newTestManager(ctx context.Context, sinks ...*slowSink) *StorageManager {
	m := &StorageManager{ResultDistributor: make(chan types.TSLAResult, 20)}
	for _, sink := range sinks {
		m.Engines = append(m.Engines, StorageEngine{Engine: sink, C: sink.StartStorageEngine(ctx, &m.wg)})
	}
	m.wg.Add(1)
	go m.startResultDistributor(ctx)
	return m
}

func testRow(i int) types.TSLAResult {
	return types.TSLAResult{
		RGIID:   fmt.Sprintf("RGI60-11.%05d", i),
		SceneID: "LC08_L1TP_195028_20200801",
		Status:  types.StatusEstimated,
	}
}

// Close must not return until every row handed to the distributor has reached
// every sink, even when the sinks are far slower than the producer.
func TestStorageManagerCloseDeliversAllRows(t *testing.T) {
	ctx := context.Background()
	fast := &slowSink{}
	slow := &slowSink{delay: 2 * time.Millisecond}
	m := newTestManager(ctx, fast, slow)

	const n = 50
	for i := 0; i < n; i++ {
		m.ResultDistributor <- testRow(i)
	}
	m.Close()

	for name, sink := range map[string]*slowSink{"fast": fast, "slow": slow} {
		rows := sink.stored()
		if len(rows) != n {
			t.Fatalf("%s sink: expected %d stored rows after Close, got %d", name, n, len(rows))
		}
		for i, r := range rows {
			if want := fmt.Sprintf("RGI60-11.%05d", i); r.RGIID != want {
				t.Errorf("%s sink row %d: expected RGIID %s, got %s", name, i, want, r.RGIID)
			}
		}
	}
}

// Cancellation mid-batch must still forward rows already accepted onto the
// distributor channel before the sinks shut down.
func TestStorageManagerCancelDrainsBufferedRows(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := &slowSink{delay: time.Millisecond}
	m := newTestManager(ctx, sink)

	const n = 20
	for i := 0; i < n; i++ {
		m.ResultDistributor <- testRow(i)
	}
	cancel()
	m.Close()

	if rows := sink.stored(); len(rows) != n {
		t.Fatalf("expected %d stored rows after cancel and Close, got %d", n, len(rows))
	}
}
