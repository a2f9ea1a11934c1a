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

package rpcpool_test

import (
	"context"
	"fmt"
	"math/big"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/phayes/freeport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/push-protocol/push-chain-sdk"
	"github.com/push-protocol/push-chain-sdk/pushchaintest"
	"github.com/push-protocol/push-chain-sdk/rpcpool"
)

type fakeClient struct {
	url   string
	fail  bool
	calls int32
}

func (c *fakeClient) call() error {
	atomic.AddInt32(&c.calls, 1)
	if c.fail {
		return errors.New("endpoint down: " + c.url)
	}
	return nil
}

func newFakePool(t *testing.T, fail ...bool) (*rpcpool.Pool[*fakeClient], []*fakeClient) {
	t.Helper()
	urls := make([]string, len(fail))
	clients := make([]*fakeClient, len(fail))
	for i := range fail {
		urls[i] = fmt.Sprintf("http://node%d", i)
		clients[i] = &fakeClient{url: urls[i], fail: fail[i]}
	}
	p, err := rpcpool.NewWithClients("test", urls, clients, 0)
	require.NoError(t, err)
	return p, clients
}

func Test_Pool_Do(t *testing.T) {
	ctx := context.Background()
	callFn := func(_ context.Context, c *fakeClient) error { return c.call() }

	t.Run("happy_first_endpoint", func(t *testing.T) {
		p, clients := newFakePool(t, false, false)
		require.NoError(t, p.Do(ctx, callFn))
		assert.Equal(t, int32(1), clients[0].calls)
		assert.Equal(t, int32(0), clients[1].calls)
	})

	t.Run("happy_failover_and_stickiness", func(t *testing.T) {
		p, clients := newFakePool(t, true, false, false)
		require.NoError(t, p.Do(ctx, callFn))
		assert.Equal(t, int32(1), clients[0].calls)
		assert.Equal(t, int32(1), clients[1].calls)
		assert.Equal(t, "http://node1", p.Current())

		// Next call starts with the endpoint that last succeeded.
		require.NoError(t, p.Do(ctx, callFn))
		assert.Equal(t, int32(1), clients[0].calls)
		assert.Equal(t, int32(2), clients[1].calls)
		assert.Equal(t, int32(0), clients[2].calls)
	})

	t.Run("happy_wraps_around", func(t *testing.T) {
		p, clients := newFakePool(t, true, false, true)
		require.NoError(t, p.Do(ctx, callFn))
		clients[1].fail = true
		clients[0].fail = false

		require.NoError(t, p.Do(ctx, callFn))
		assert.Equal(t, "http://node0", p.Current())
		assert.Equal(t, int32(1), clients[2].calls)
	})

	t.Run("err_all_fail", func(t *testing.T) {
		p, clients := newFakePool(t, true, true)
		err := p.Do(ctx, callFn)
		apiErr := pushchaintest.RequireAPIError(t, err, pushchain.ChainError, pushchain.ErrRPCUnavailable,
			"endpoint down: http://node1")
		pushchaintest.AssertErrInfoRPCUnavailable(t, apiErr.AddInfo(), "test", p.URLs())
		for _, c := range clients {
			assert.Equal(t, int32(1), c.calls)
		}
	})

	t.Run("err_permanent_stops_failover", func(t *testing.T) {
		p, clients := newFakePool(t, false, false)
		errRevert := errors.New("execution reverted")
		err := p.Do(ctx, func(_ context.Context, c *fakeClient) error {
			c.call() // nolint: errcheck
			return backoff.Permanent(errRevert)
		})
		assert.Equal(t, errRevert, err)
		assert.Equal(t, int32(0), clients[1].calls)
	})

	t.Run("err_context_cancelled", func(t *testing.T) {
		p, clients := newFakePool(t, true, false)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := p.Do(cctx, callFn)
		require.Error(t, err)
		_, isAPIErr := pushchain.AsAPIError(err)
		assert.False(t, isAPIErr)
		assert.Equal(t, int32(0), clients[1].calls)
	})
}

func Test_Pool_DialsOncePerEndpoint(t *testing.T) {
	var dials int32
	dial := func(_ context.Context, url string) (*fakeClient, error) {
		atomic.AddInt32(&dials, 1)
		time.Sleep(20 * time.Millisecond)
		return &fakeClient{url: url}, nil
	}
	p, err := rpcpool.New("test", []string{"http://node0"}, dial, 0)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Do(context.Background(), func(_ context.Context, c *fakeClient) error {
				return c.call()
			}))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
}

func Test_Pool_DialError(t *testing.T) {
	var dials int32
	dial := func(_ context.Context, url string) (*fakeClient, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return nil, errors.New("connection refused")
		}
		return &fakeClient{url: url}, nil
	}
	p, err := rpcpool.New("test", []string{"http://node0", "http://node1"}, dial, 0)
	require.NoError(t, err)

	require.NoError(t, p.Do(context.Background(), func(_ context.Context, c *fakeClient) error { return c.call() }))
	assert.Equal(t, "http://node1", p.Current())
}

func Test_Call(t *testing.T) {
	p, _ := newFakePool(t, true, false)
	got, err := rpcpool.Call(context.Background(), p, func(_ context.Context, c *fakeClient) (string, error) {
		return c.url, c.call()
	})
	require.NoError(t, err)
	assert.Equal(t, "http://node1", got)
}

func Test_New(t *testing.T) {
	t.Run("err_no_urls", func(t *testing.T) {
		_, err := rpcpool.New[*fakeClient]("test", nil, nil, 0)
		pushchaintest.RequireAPIError(t, err, pushchain.ClientError, pushchain.ErrInvalidConfig)
	})
	t.Run("err_clients_mismatch", func(t *testing.T) {
		_, err := rpcpool.NewWithClients("test", []string{"a"}, []*fakeClient{}, 0)
		assert.Error(t, err)
	})
}

type chainIDService struct{ id int64 }

func (s *chainIDService) ChainId() *hexutil.Big { //nolint: revive	// name defines the rpc method.
	return (*hexutil.Big)(big.NewInt(s.id))
}

// Test_Pool_JSONRPC fails over from an endpoint with nothing listening to a
// live JSON-RPC server.
func Test_Pool_JSONRPC(t *testing.T) {
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", &chainIDService{id: 42101}))
	live := httptest.NewServer(srv)
	t.Cleanup(live.Close)
	t.Cleanup(srv.Stop)

	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	dead := fmt.Sprintf("http://127.0.0.1:%d", port)

	p, err := rpcpool.New("eip155:42101", []string{dead, live.URL}, ethclient.DialContext, 0)
	require.NoError(t, err)

	id, err := rpcpool.Call(context.Background(), p, func(ctx context.Context, c *ethclient.Client) (*big.Int, error) {
		return c.ChainID(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42101), id.Int64())
	assert.Equal(t, live.URL, p.Current())
}
