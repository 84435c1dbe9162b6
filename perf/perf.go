package perf

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type RequestPerf struct {
	Route  string
	Path   string // the path actually matched
	Method string
	Start  time.Time
	End    time.Time
	Blocks []PerfBlock
}

func MakeNewRequestPerf(route string, method string, path string) *RequestPerf {
	return &RequestPerf{
		Start:  time.Now(),
		Route:  route,
		Path:   path,
		Method: method,
	}
}

func (rp *RequestPerf) EndRequest() {
	for rp.EndBlock() {
	}
	rp.End = time.Now()
}

func (rp *RequestPerf) Checkpoint(category, description string) {
	now := time.Now()
	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       now,
		End:         now,
		Category:    category,
		Description: description,
	})
}

func (rp *RequestPerf) StartBlock(category, description string) {
	rp.Blocks = append(rp.Blocks, PerfBlock{
		Start:       time.Now(),
		Category:    category,
		Description: description,
	})
}

// EndBlock closes the most recently opened block. It reports false when
// no block is open.
func (rp *RequestPerf) EndBlock() bool {
	for i := len(rp.Blocks) - 1; i >= 0; i -= 1 {
		if rp.Blocks[i].End.IsZero() {
			rp.Blocks[i].End = time.Now()
			return true
		}
	}
	return false
}

func (rp *RequestPerf) Duration() time.Duration {
	return rp.End.Sub(rp.Start)
}

func (rp *RequestPerf) MsFromStart(block *PerfBlock) float64 {
	return float64(block.Start.Sub(rp.Start).Nanoseconds()) / 1000 / 1000
}

func (rp *RequestPerf) MarshalZerologObject(e *zerolog.Event) {
	e.Str("route", rp.Route).
		Str("method", rp.Method).
		Float64("total_ms", float64(rp.Duration().Nanoseconds())/1000/1000)
	blocks := zerolog.Arr()
	for i := range rp.Blocks {
		blocks.Object(&rp.Blocks[i])
	}
	e.Array("blocks", blocks)
}

type PerfBlock struct {
	Start       time.Time
	End         time.Time
	Category    string
	Description string
}

func (pb *PerfBlock) Duration() time.Duration {
	return pb.End.Sub(pb.Start)
}

func (pb *PerfBlock) DurationMs() float64 {
	return float64(pb.Duration().Nanoseconds()) / 1000 / 1000
}

func (pb *PerfBlock) MarshalZerologObject(e *zerolog.Event) {
	e.Str("category", pb.Category).
		Str("description", pb.Description).
		Float64("ms", pb.DurationMs())
}

// PerfStorage holds the most recent requests, oldest first.
type PerfStorage struct {
	AllRequests []RequestPerf
}

type PerfCollector struct {
	In          chan<- RequestPerf
	Done        <-chan struct{}
	RequestCopy chan<- (chan<- PerfStorage)
}

// RunPerfCollector starts a goroutine that keeps the last capacity
// submitted requests until ctx is cancelled.
func RunPerfCollector(ctx context.Context, capacity int) *PerfCollector {
	in := make(chan RequestPerf)
	done := make(chan struct{})
	requestCopy := make(chan (chan<- PerfStorage))

	var storage PerfStorage

	go func() {
		defer close(done)

		for {
			select {
			case perf := <-in:
				storage.AllRequests = append(storage.AllRequests, perf)
				if len(storage.AllRequests) > capacity {
					storage.AllRequests = append([]RequestPerf(nil), storage.AllRequests[len(storage.AllRequests)-capacity:]...)
				}
			case resultChan := <-requestCopy:
				resultChan <- PerfStorage{AllRequests: append([]RequestPerf(nil), storage.AllRequests...)}
			case <-ctx.Done():
				return
			}
		}
	}()

	return &PerfCollector{
		In:          in,
		Done:        done,
		RequestCopy: requestCopy,
	}
}

// SubmitRun hands a finished request to the collector. It drops the run
// once the collector has stopped.
func (perfCollector *PerfCollector) SubmitRun(run *RequestPerf) {
	select {
	case perfCollector.In <- *run:
	case <-perfCollector.Done:
	}
}

// GetPerfCopy returns a snapshot of the stored requests, or an empty one
// once the collector has stopped.
func (perfCollector *PerfCollector) GetPerfCopy() *PerfStorage {
	resultChan := make(chan PerfStorage, 1)
	select {
	case perfCollector.RequestCopy <- resultChan:
	case <-perfCollector.Done:
		return &PerfStorage{}
	}
	perfStorageCopy := <-resultChan
	return &perfStorageCopy
}
