package component

import (
	"context"

	"github.com/jonwraymond/compose/cache"
)

// Cached is the memoized form of Call. Construction runs first, so invalid
// props never touch the store. On a miss the render runs outside the store
// lock; errors and halts are returned without storing anything.
//
// The key depends only on the constructed props. Two calls with equal props
// and different children return the output of whichever rendered first.
func (c *Class) Cached(ctx context.Context, props Props, children Children) (any, error) {
	in, err := c.New(props, children)
	if err != nil {
		return nil, err
	}
	memo, err := c.memoizer()
	if err != nil {
		return nil, err
	}
	return memo.Fetch(ctx, c.name, in.props, func(ctx context.Context) (any, error) {
		return c.render(ctx, in, true)
	})
}

// RenderCached is Cached followed by Text.
func (c *Class) RenderCached(ctx context.Context, props Props, children Children) (string, error) {
	out, err := c.Cached(ctx, props, children)
	if err != nil {
		return "", err
	}
	return Text(out), nil
}

// Warm renders each input without children and stores the results,
// replacing existing entries. Every input is constructed before any render
// starts, so one invalid input leaves the store untouched.
//
// Inputs are rendered in order unless the class was built with
// WithWarmConcurrency. With more than one worker, which entries survive
// when the inputs outnumber the capacity depends on scheduling.
func (c *Class) Warm(ctx context.Context, inputs ...Props) error {
	memo, err := c.memoizer()
	if err != nil {
		return err
	}

	keyed := make([]any, 0, len(inputs))
	for _, props := range inputs {
		in, err := c.New(props, nil)
		if err != nil {
			return err
		}
		keyed = append(keyed, in.props)
	}

	return memo.Warm(ctx, c.name, keyed, func(ctx context.Context, input any) (any, error) {
		in := &Instance{class: c, props: input.(Props)}
		return c.render(ctx, in, true)
	})
}

// Flush empties the class store. It is a no-op before the first memoized
// call and does not create the store.
func (c *Class) Flush() {
	if !c.memoReady.Load() {
		return
	}
	if c.memo != nil {
		c.memo.Store().Flush()
	}
}

// Store returns the class store, creating it if needed. It returns nil when
// the class was configured with an invalid capacity.
func (c *Class) Store() *cache.Store {
	memo, err := c.memoizer()
	if err != nil {
		return nil
	}
	return memo.Store()
}

func (c *Class) memoizer() (*cache.Memo, error) {
	c.memoOnce.Do(func() {
		storeOpts := []cache.StoreOption{}
		if c.cfg.registry != nil {
			storeOpts = append(storeOpts, cache.WithRegistry(c.cfg.registry))
		}
		store, err := cache.NewStore(c.name, c.cfg.capacity, storeOpts...)
		if err != nil {
			c.memoErr = err
			return
		}

		warm := 1
		if c.cfg.warmConcurrency > 0 {
			warm = c.cfg.warmConcurrency
		}
		memoOpts := []cache.MemoOption{cache.WithWarmConcurrency(warm)}
		if c.cfg.observer != nil {
			memoOpts = append(memoOpts, cache.WithRecorder(c.cfg.observer.Metrics()))
		}
		c.memo, c.memoErr = cache.NewMemo(store, c.cfg.keyer, memoOpts...)
	})
	c.memoReady.Store(true)
	return c.memo, c.memoErr
}

// FlushAll empties every store in the default registry.
func FlushAll() {
	cache.FlushAll()
}
