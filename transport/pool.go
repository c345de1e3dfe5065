// Copyright 2026 Blink Labs Software
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

package transport

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc"
)

// DialFunc creates a client connection for a target
type DialFunc func(ctx context.Context, target Target) (*grpc.ClientConn, error)

// Pool keeps one client connection per node address. Connections are reference
// counted while in use, and concurrent dials of the same address are collapsed into
// a single dial
type Pool struct {
	dialFunc DialFunc
	group    singleflight.Group
	mu       sync.Mutex
	conns    map[string]*pooledConn
	closed   bool
}

type pooledConn struct {
	conn *grpc.ClientConn
	refs int
}

func NewPool(dialFunc DialFunc) *Pool {
	return &Pool{
		dialFunc: dialFunc,
		conns:    make(map[string]*pooledConn),
	}
}

func poolKey(target Target) string {
	return target.Address + "#" + hex.EncodeToString(target.CertHash)
}

// Acquire returns a connection for the target and a function that must be called
// once the caller is done with it
func (p *Pool) Acquire(
	ctx context.Context,
	target Target,
) (*grpc.ClientConn, func(), error) {
	key := poolKey(target)
	if conn, release, ok, err := p.tryAcquire(key); ok || err != nil {
		return conn, release, err
	}
	_, err, _ := p.group.Do(key, func() (any, error) {
		p.mu.Lock()
		if _, ok := p.conns[key]; ok {
			p.mu.Unlock()
			return nil, nil
		}
		p.mu.Unlock()
		conn, err := p.dialFunc(ctx, target)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			_ = conn.Close()
			return nil, ErrClosed
		}
		p.conns[key] = &pooledConn{conn: conn}
		return nil, nil
	})
	if err != nil {
		return nil, nil, err
	}
	conn, release, ok, err := p.tryAcquire(key)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, errors.New("connection was removed before it could be used")
	}
	return conn, release, nil
}

func (p *Pool) tryAcquire(key string) (*grpc.ClientConn, func(), bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, nil, false, ErrClosed
	}
	pc, ok := p.conns[key]
	if !ok {
		return nil, nil, false, nil
	}
	pc.refs++
	var once sync.Once
	release := func() {
		once.Do(func() {
			p.mu.Lock()
			defer p.mu.Unlock()
			pc.refs--
		})
	}
	return pc.conn, release, true, nil
}

// InUse returns the number of outstanding acquisitions of the target's connection
func (p *Pool) InUse(target Target) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pc, ok := p.conns[poolKey(target)]; ok {
		return pc.refs
	}
	return 0
}

// Len returns the number of pooled connections
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

// Close closes every pooled connection. Further acquisitions fail with ErrClosed
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	conns := p.conns
	p.conns = make(map[string]*pooledConn)
	p.mu.Unlock()
	var errs []error
	for _, pc := range conns {
		if err := pc.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
