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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/keys"
	"github.com/blinklabs-io/gohiero/node"
)

// ClientConfig represents a client config file
type ClientConfig struct {
	Network    ClientConfigNetwork  `json:"network"`
	Operator   *ClientConfigOperator `json:"operator,omitempty"`
	CertHashes map[string]string    `json:"certHashes,omitempty"`
}

// ClientConfigNetwork is either the name of a predefined network or a map of node
// account IDs to one or more addresses
type ClientConfigNetwork struct {
	Name  string
	Nodes map[string][]string
}

func (n *ClientConfigNetwork) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		n.Name = name
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.New("network must be a name or a map of node account IDs to addresses")
	}
	n.Nodes = make(map[string][]string, len(raw))
	for id, value := range raw {
		var address string
		if err := json.Unmarshal(value, &address); err == nil {
			n.Nodes[id] = []string{address}
			continue
		}
		var addresses []string
		if err := json.Unmarshal(value, &addresses); err != nil {
			return fmt.Errorf("addresses for node %s: %w", id, err)
		}
		n.Nodes[id] = addresses
	}
	return nil
}

func (n ClientConfigNetwork) MarshalJSON() ([]byte, error) {
	if n.Nodes == nil {
		return json.Marshal(n.Name)
	}
	return json.Marshal(n.Nodes)
}

type ClientConfigOperator struct {
	AccountID  string `json:"accountId"`
	PrivateKey string `json:"privateKey"`
}

func NewClientConfigFromFile(path string) (*ClientConfig, error) {
	dataFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer dataFile.Close()
	return NewClientConfigFromReader(dataFile)
}

func NewClientConfigFromReader(r io.Reader) (*ClientConfig, error) {
	c := &ClientConfig{}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Endpoints returns the configured nodes
func (c *ClientConfig) Endpoints() ([]*node.Endpoint, error) {
	var endpoints []*node.Endpoint
	if c.Network.Nodes == nil {
		network := NetworkByName(c.Network.Name)
		if network.Name == NetworkInvalid.Name {
			return nil, fmt.Errorf("unknown network: %q", c.Network.Name)
		}
		endpoints = network.Endpoints()
	} else {
		nodeIds := make([]string, 0, len(c.Network.Nodes))
		for id := range c.Network.Nodes {
			nodeIds = append(nodeIds, id)
		}
		slices.Sort(nodeIds)
		for _, id := range nodeIds {
			accountID, err := ids.AccountIDFromString(id)
			if err != nil {
				return nil, err
			}
			addresses := c.Network.Nodes[id]
			if len(addresses) == 0 {
				return nil, fmt.Errorf("no addresses for node %s", id)
			}
			endpoints = append(endpoints, node.NewEndpoint(accountID, addresses...))
		}
	}
	for _, endpoint := range endpoints {
		hashHex, ok := c.CertHashes[endpoint.AccountID().String()]
		if !ok {
			continue
		}
		certHash, err := hex.DecodeString(strings.TrimPrefix(hashHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("cert hash for node %s: %w", endpoint.AccountID(), err)
		}
		endpoint.WithCertHash(certHash)
	}
	return endpoints, nil
}

// Options returns client options for the configured network and operator
func (c *ClientConfig) Options() ([]ClientOptionFunc, error) {
	endpoints, err := c.Endpoints()
	if err != nil {
		return nil, err
	}
	ret := []ClientOptionFunc{WithNodes(endpoints...)}
	if c.Operator != nil {
		accountID, err := ids.AccountIDFromString(c.Operator.AccountID)
		if err != nil {
			return nil, fmt.Errorf("operator account: %w", err)
		}
		key, err := keys.PrivateKeyFromString(c.Operator.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("operator key: %w", err)
		}
		ret = append(ret, WithOperator(accountID, key))
	}
	return ret, nil
}
