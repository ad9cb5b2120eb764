package font

import (
	"context"
	"image"
	"sync"
)

// TextureProvider is the surface RenderPool needs from a glyph store.
// Both *Source and *CachedSource satisfy it.
type TextureProvider interface {
	TextureForRune(r rune) *image.RGBA
}

// RenderResult is the outcome of one asynchronous rasterization.
type RenderResult struct {
	// Rune is the requested code point.
	Rune rune

	// Texture is the rendered SDF texture, nil when the glyph is
	// missing or the request was cancelled.
	Texture *image.RGBA

	// Err is non-nil when the request was cancelled before native
	// work began. Missing glyphs are not errors.
	Err error
}

// renderTask is one queued rasterization request.
type renderTask struct {
	ctx    context.Context
	store  TextureProvider
	r      rune
	result chan RenderResult
}

// RenderPool dispatches glyph rasterization onto a fixed set of
// workers, keeping expensive native renders off the calling thread.
// The per-handle lock still serializes the actual native calls; the
// pool only moves the wait.
//
// No ordering is guaranteed across requests: results for glyphs
// submitted concurrently complete in any order.
type RenderPool struct {
	tasks chan renderTask
	wg    sync.WaitGroup

	closeOnce sync.Once
}

// NewRenderPool starts a pool with the given number of workers.
// Workers values below 1 are raised to 1.
func NewRenderPool(workers int) *RenderPool {
	if workers < 1 {
		workers = 1
	}
	p := &RenderPool{
		tasks: make(chan renderTask),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit queues one rasterization and returns a channel that receives
// exactly one result. The context is checked before native work
// starts; once the native render has begun it is not preemptible and
// runs to completion.
func (p *RenderPool) Submit(ctx context.Context, store TextureProvider, r rune) <-chan RenderResult {
	result := make(chan RenderResult, 1)
	task := renderTask{ctx: ctx, store: store, r: r, result: result}
	select {
	case p.tasks <- task:
	case <-ctx.Done():
		result <- RenderResult{Rune: r, Err: ctx.Err()}
	}
	return result
}

// worker consumes tasks until the pool closes.
func (p *RenderPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		if err := task.ctx.Err(); err != nil {
			task.result <- RenderResult{Rune: task.r, Err: err}
			continue
		}
		task.result <- RenderResult{
			Rune:    task.r,
			Texture: task.store.TextureForRune(task.r),
		}
	}
}

// Close stops the workers after draining queued tasks. Submit must not
// be called after Close.
func (p *RenderPool) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}
