// Copyright (c) 2025 - for information on the respective copyright owner
// see the NOTICE file and/or the repository at
// https://github.com/push-protocol/push-chain-sdk
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rpcpool provides an endpoint pool that spreads calls to a chain over
// its RPC endpoints, failing over to the next endpoint when one fails.
package rpcpool

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/log"
)

// DefaultRetryDelay is the delay between attempts on successive endpoints.
const DefaultRetryDelay = 100 * time.Millisecond

// DialFunc returns a client connected to the endpoint at url.
type DialFunc[C any] func(ctx context.Context, url string) (C, error)

// Pool is a set of endpoints of one chain. Calls start at the endpoint that
// last succeeded and rotate round robin through the others on failure.
//
// Clients are dialed lazily on first use and reused afterwards.
type Pool[C any] struct {
	name       string
	urls       []string
	dial       DialFunc[C]
	retryDelay time.Duration
	logger     log.Logger

	mtx     sync.Mutex
	clients map[int]C
	current int
	dials   singleflight.Group
}

// New returns a pool for the given endpoints. name is used in logs and
// errors, usually the chain identifier.
func New[C any](name string, urls []string, dial DialFunc[C], retryDelay time.Duration) (*Pool[C], error) {
	if len(urls) == 0 {
		return nil, pushchain.NewAPIErrInvalidConfig(errors.New("no endpoints"), "rpcURLs", name)
	}
	if retryDelay < 0 {
		retryDelay = DefaultRetryDelay
	}
	urlsCopy := make([]string, len(urls))
	copy(urlsCopy, urls)
	return &Pool[C]{
		name:       name,
		urls:       urlsCopy,
		dial:       dial,
		retryDelay: retryDelay,
		logger:     log.NewLoggerWithField("rpcpool", name),
		clients:    make(map[int]C),
	}, nil
}

// NewWithClients returns a pool with already connected clients, one per url.
func NewWithClients[C any](name string, urls []string, clients []C, retryDelay time.Duration) (*Pool[C], error) {
	if len(urls) != len(clients) {
		return nil, errors.Errorf("got %d urls and %d clients", len(urls), len(clients))
	}
	p, err := New(name, urls, func(context.Context, string) (C, error) {
		var zero C
		return zero, errors.New("pool does not dial")
	}, retryDelay)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		p.clients[i] = clients[i]
	}
	return p, nil
}

// Name returns the name of the pool.
func (p *Pool[C]) Name() string { return p.name }

// URLs returns the endpoints of the pool.
func (p *Pool[C]) URLs() []string {
	urls := make([]string, len(p.urls))
	copy(urls, p.urls)
	return urls
}

// Current returns the endpoint the next call will start with.
func (p *Pool[C]) Current() string {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.urls[p.current]
}

// Do calls fn with the client of each endpoint in turn until one call
// succeeds. Subsequent calls start with the endpoint that succeeded.
//
// Failover stops early if ctx is done or fn returns an error marked with
// backoff.Permanent. If all endpoints fail, an ErrRPCUnavailable API error
// wrapping the last error is returned.
func (p *Pool[C]) Do(ctx context.Context, fn func(ctx context.Context, c C) error) error {
	p.mtx.Lock()
	idx := p.current
	p.mtx.Unlock()

	var lastErr error
	permanent, attempt := false, 0
	op := func() error {
		if attempt > 0 {
			idx = (idx + 1) % len(p.urls)
		}
		attempt++

		c, err := p.client(ctx, idx)
		if err == nil {
			err = fn(ctx, c)
		}
		if err == nil {
			p.mtx.Lock()
			p.current = idx
			p.mtx.Unlock()
			return nil
		}
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			permanent = true
			return err
		}
		p.logger.WithError(err).WithField("url", p.urls[idx]).Warn("Endpoint failed")
		lastErr = err
		return err
	}

	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(p.retryDelay), uint64(len(p.urls)-1))
	err := backoff.Retry(op, backoff.WithContext(b, ctx))
	switch {
	case err == nil:
		return nil
	case permanent:
		return err
	case ctx.Err() != nil:
		if lastErr == nil {
			return errors.WithStack(ctx.Err())
		}
		return errors.WithMessage(lastErr, ctx.Err().Error())
	}
	return pushchain.NewAPIErrRPCUnavailable(lastErr, p.name, p.URLs())
}

// client returns the client of the endpoint, dialing it on first use.
// Concurrent first uses share one dial.
func (p *Pool[C]) client(ctx context.Context, idx int) (C, error) {
	p.mtx.Lock()
	c, ok := p.clients[idx]
	p.mtx.Unlock()
	if ok {
		return c, nil
	}

	v, err, _ := p.dials.Do(strconv.Itoa(idx), func() (interface{}, error) {
		p.mtx.Lock()
		c, ok := p.clients[idx]
		p.mtx.Unlock()
		if ok {
			return c, nil
		}
		c, err := p.dial(ctx, p.urls[idx])
		if err != nil {
			return nil, err
		}
		p.mtx.Lock()
		p.clients[idx] = c
		p.mtx.Unlock()
		return c, nil
	})
	if err != nil {
		var zero C
		return zero, errors.WithMessage(err, "dialing "+p.urls[idx])
	}
	c, _ = v.(C)
	return c, nil
}

// Call is like Pool.Do for functions returning a value.
func Call[C, T any](ctx context.Context, p *Pool[C], fn func(ctx context.Context, c C) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context, c C) error {
		var err error
		result, err = fn(ctx, c)
		return err
	})
	return result, err
}
