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

package mocknode

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/blinklabs-io/gohiero/transport"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Call is a request received by the mock
type Call struct {
	Target  transport.Target
	Method  string
	Request []byte
	At      time.Time
}

// Transport mocks the node transport with a scripted conversation
type Transport struct {
	mu           sync.Mutex
	conversation []Entry
	calls        []Call
	errorChan    chan error
	closed       bool
}

// New returns a new Transport with the provided conversation entries
func New(conversation ...Entry) *Transport {
	return &Transport{
		conversation: slices.Clone(conversation),
		errorChan:    make(chan error, 100),
	}
}

// Add appends entries to the conversation
func (t *Transport) Add(entries ...Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conversation = append(t.conversation, entries...)
}

// ErrorChan returns the channel that receives calls the conversation did not expect
func (t *Transport) ErrorChan() <-chan error {
	return t.errorChan
}

// Calls returns the calls received so far
func (t *Transport) Calls() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.calls)
}

// Remaining returns the number of entries that have not been used
func (t *Transport) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conversation)
}

func (t *Transport) Send(
	ctx context.Context,
	target transport.Target,
	method string,
	request []byte,
) ([]byte, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, transport.NewTransportError(target, method, transport.ErrClosed)
	}
	t.calls = append(
		t.calls,
		Call{
			Target:  target,
			Method:  method,
			Request: slices.Clone(request),
			At:      time.Now(),
		},
	)
	idx := slices.IndexFunc(
		t.conversation,
		func(e Entry) bool { return e.matches(target.NodeID, method) },
	)
	if idx < 0 {
		t.mu.Unlock()
		err := fmt.Errorf("unexpected call to %s on node %s", method, target.NodeID)
		t.reportError(err)
		return nil, transport.NewTransportError(
			target,
			method,
			status.Error(codes.Unimplemented, err.Error()),
		)
	}
	entry := t.conversation[idx]
	t.conversation = slices.Delete(t.conversation, idx, idx+1)
	t.mu.Unlock()
	if entry.Check != nil {
		if err := entry.Check(request); err != nil {
			err = fmt.Errorf("request to %s on node %s: %w", method, target.NodeID, err)
			t.reportError(err)
			return nil, transport.NewTransportError(
				target,
				method,
				status.Error(codes.InvalidArgument, err.Error()),
			)
		}
	}
	if entry.Delay > 0 {
		timer := time.NewTimer(entry.Delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, transport.NewTransportError(
				target,
				method,
				status.FromContextError(ctx.Err()).Err(),
			)
		}
	}
	if entry.Err != nil {
		var tErr *transport.TransportError
		if errors.As(entry.Err, &tErr) {
			return nil, entry.Err
		}
		return nil, transport.NewTransportError(target, method, entry.Err)
	}
	return slices.Clone(entry.Response), nil
}

func (t *Transport) reportError(err error) {
	select {
	case t.errorChan <- err:
	default:
	}
}

func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
