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
	"fmt"

	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/node"
)

// NetworkNode is a consensus node in a predefined network
type NetworkNode struct {
	AccountID ids.AccountID
	Addresses []string
}

// Network definitions
var (
	NetworkMainnet = Network{
		Name: "mainnet",
		Nodes: []NetworkNode{
			{AccountID: ids.NewAccountID(3), Addresses: []string{"35.237.200.180:50211"}},
			{AccountID: ids.NewAccountID(4), Addresses: []string{"35.186.191.247:50211"}},
			{AccountID: ids.NewAccountID(5), Addresses: []string{"35.192.2.25:50211"}},
		},
	}
	NetworkTestnet = Network{
		Name:  "testnet",
		Nodes: hostedNodes("testnet", 3, 4, 5, 6),
	}
	NetworkPreviewnet = Network{
		Name:  "previewnet",
		Nodes: hostedNodes("previewnet", 3, 4, 5, 6),
	}
	NetworkLocal = Network{
		Name: "local",
		Nodes: []NetworkNode{
			{AccountID: ids.NewAccountID(3), Addresses: []string{"127.0.0.1:50211"}},
		},
	}

	NetworkInvalid = Network{
		Name: "invalid",
	} // NetworkInvalid is used as a return value for lookup functions when a network isn't found
)

// List of valid networks for use in lookup functions
var networks = []Network{
	NetworkMainnet,
	NetworkTestnet,
	NetworkPreviewnet,
	NetworkLocal,
}

// NetworkByName returns a predefined network by name
func NetworkByName(name string) Network {
	for _, network := range networks {
		if network.Name == name {
			return network
		}
	}
	return NetworkInvalid
}

// Network represents a named set of consensus nodes
type Network struct {
	Name  string
	Nodes []NetworkNode
}

func (n Network) String() string {
	return n.Name
}

// Endpoints returns fresh registry endpoints for the network's nodes
func (n Network) Endpoints() []*node.Endpoint {
	ret := make([]*node.Endpoint, 0, len(n.Nodes))
	for _, nn := range n.Nodes {
		ret = append(ret, node.NewEndpoint(nn.AccountID, nn.Addresses...))
	}
	return ret
}

func hostedNodes(network string, nums ...uint64) []NetworkNode {
	ret := make([]NetworkNode, 0, len(nums))
	for idx, num := range nums {
		ret = append(
			ret,
			NetworkNode{
				AccountID: ids.NewAccountID(num),
				Addresses: []string{
					fmt.Sprintf("%d.%s.hedera.com:50211", idx, network),
				},
			},
		)
	}
	return ret
}
