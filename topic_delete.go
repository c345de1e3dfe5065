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

package hiero

import (
	"errors"

	"github.com/blinklabs-io/gohiero/cbor"
	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/wire"
)

var ErrMissingTopicID = errors.New("topic ID is not set")

// TopicDeleteTransaction deletes a consensus topic. It must be signed by the topic's
// admin key
type TopicDeleteTransaction struct {
	Transaction
	topicID *ids.TopicID
}

func NewTopicDeleteTransaction() *TopicDeleteTransaction {
	ret := &TopicDeleteTransaction{}
	ret.init(ret)
	return ret
}

func (t *TopicDeleteTransaction) TopicID() ids.TopicID {
	if t.topicID == nil {
		return ids.TopicID{}
	}
	return *t.topicID
}

func (t *TopicDeleteTransaction) SetTopicID(topicID ids.TopicID) error {
	if err := t.checkMutable("topic ID"); err != nil {
		return err
	}
	t.topicID = &topicID
	return nil
}

func (t *TopicDeleteTransaction) kind() wire.TransactionKind {
	return wire.TransactionKindTopicDelete
}

func (t *TopicDeleteTransaction) method() wire.Method {
	return wire.MethodDeleteTopic
}

func (t *TopicDeleteTransaction) buildData() (any, error) {
	if t.topicID == nil {
		return nil, ErrMissingTopicID
	}
	return &wire.TopicDeleteBody{TopicID: *t.topicID}, nil
}

func (t *TopicDeleteTransaction) decodeData(data cbor.RawMessage) error {
	var body wire.TopicDeleteBody
	if err := wire.Unmarshal(data, &body); err != nil {
		return err
	}
	t.topicID = &body.TopicID
	return nil
}
