package ui

import (
	"context"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	jsoniter "github.com/json-iterator/go"

	"ztop/dataset"
	"ztop/view"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// batchRecord is one line of batch output.
type batchRecord struct {
	Time     time.Time         `json:"time"`
	Interval float64           `json:"interval"`
	Datasets []dataset.Element `json:"datasets"`
}

// Batch writes one JSON object per sample instead of drawing a table. It is used
// when stdout is not a terminal.
type Batch struct {
	state    *view.State
	enc      *jsoniter.Encoder
	interval time.Duration
	count    int
	logger   logr.Logger

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

// NewBatch writes to out every interval. count limits the number of records; 0
// runs until ctx is done.
func NewBatch(state *view.State, out io.Writer, interval time.Duration, count int, logger logr.Logger) *Batch {
	return &Batch{
		state:    state,
		enc:      json.NewEncoder(out),
		interval: interval,
		count:    count,
		logger:   logger.WithName("batch"),
		now:      time.Now,
		wait:     sleepCtx,
	}
}

// Run emits the current generation, then samples and emits again every interval.
func (b *Batch) Run(ctx context.Context) error {
	for n := 0; b.count <= 0 || n < b.count; n++ {
		if n > 0 {
			if err := b.wait(ctx, b.interval); err != nil {
				return nil
			}
			if err := b.state.Refresh(ctx); err != nil {
				return err
			}
		}
		if err := b.emit(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Batch) emit() error {
	rows, err := b.state.Elements()
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []dataset.Element{}
	}
	rec := batchRecord{Time: b.now(), Interval: b.interval.Seconds(), Datasets: rows}
	if err := b.enc.Encode(&rec); err != nil {
		return errors.Wrap(err, "write sample")
	}
	b.logger.V(1).Info("sample written", "datasets", len(rows))
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
