package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrPoolClosed is returned for work submitted after Close.
var ErrPoolClosed = errors.New("image pool is closed")

// Pool runs CPU-bound image work (decode, resize, collage encoding) on a
// fixed number of workers, keeping it off the I/O goroutines so a large
// category render cannot starve network fetches and vice versa.
type Pool struct {
	jobs    chan func()
	done    chan struct{}
	maxSide int
}

// NewPool starts workers goroutines. maxSide bounds both thumbnail
// dimensions; aspect ratio is preserved.
func NewPool(workers, maxSide int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		jobs:    make(chan func()),
		done:    make(chan struct{}),
		maxSide: maxSide,
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for {
		select {
		case job := <-p.jobs:
			job()
		case <-p.done:
			return
		}
	}
}

// submit queues fn on a worker and waits for it to finish.
func (p *Pool) submit(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ran := make(chan struct{})
	wrapped := func() {
		fn()
		close(ran)
	}

	select {
	case p.jobs <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return ErrPoolClosed
	}

	select {
	case <-ran:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Decode turns raw bytes into a thumbnail with neither side exceeding the
// pool's bound. It returns early if ctx is cancelled while the job is
// queued or running.
func (p *Pool) Decode(ctx context.Context, raw []byte) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	if serr := p.submit(ctx, func() {
		img, err = p.decode(raw)
	}); serr != nil {
		return nil, serr
	}
	return img, err
}

func (p *Pool) decode(raw []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() > p.maxSide || b.Dy() > p.maxSide {
		img = imaging.Fit(img, p.maxSide, p.maxSide, imaging.Lanczos)
	}
	return img, nil
}

// Compose runs the collage composition on a pool worker.
func (p *Pool) Compose(ctx context.Context, thumbs []image.Image) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if serr := p.submit(ctx, func() {
		data, err = Compose(thumbs)
	}); serr != nil {
		return nil, serr
	}
	return data, err
}

// Close stops the workers. In-flight jobs finish; queued jobs are dropped.
func (p *Pool) Close() {
	close(p.done)
}
