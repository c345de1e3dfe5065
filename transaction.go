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
	"bytes"
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/blinklabs-io/gohiero/cbor"
	"github.com/blinklabs-io/gohiero/ids"
	"github.com/blinklabs-io/gohiero/keys"
	"github.com/blinklabs-io/gohiero/wire"
)

const MaxMemoLength = 100

var (
	ErrMemoTooLong         = errors.New("memo is longer than 100 bytes")
	ErrSignerNotReplayable = errors.New("transaction carries signatures that cannot be reproduced")
)

// Request is a transaction of any kind. Builders such as FileDeleteTransaction
// implement it by embedding Transaction
type Request interface {
	Kind() wire.TransactionKind
	TransactionID() ids.TransactionID
	NodeAccountIDs() []ids.AccountID
	MaxTransactionFee() uint64
	TransactionMemo() string
	IsFrozen() bool
	Freeze(c *Client) error
	Sign(key keys.PrivateKey) error
	SignWith(publicKey keys.PublicKey, signer keys.SignerFunc) error
	SignWithOperator(c *Client) error
	RemoveSignature(publicKey keys.PublicKey) error
	Signatures() map[ids.AccountID][]Signature
	IsAuthorizedBy(key keys.Key) bool
	TransactionHashes() (map[ids.AccountID][]byte, error)
	ToBytes() ([]byte, error)
	Execute(ctx context.Context, c *Client) (*TransactionResponse, error)
	ExecuteWithTimeout(
		ctx context.Context,
		c *Client,
		timeout time.Duration,
	) (*TransactionResponse, error)
	ExecuteAsync(ctx context.Context, c *Client) *Future[*TransactionResponse]
}

// transactionBuilder supplies the operation-specific part of a transaction
type transactionBuilder interface {
	kind() wire.TransactionKind
	method() wire.Method
	buildData() (any, error)
	decodeData(data cbor.RawMessage) error
}

// Signature is a signature over a node's transaction body
type Signature struct {
	PublicKey keys.PublicKey
	Bytes     []byte
}

type transactionSigner struct {
	publicKey keys.PublicKey
	signer    keys.SignerFunc
}

type nodeBody struct {
	nodeID     ids.AccountID
	bodyBytes  []byte
	signatures []Signature
	// Decoded form kept while the body and signatures are unchanged since loading
	decoded *wire.SignedTransaction
}

func (b *nodeBody) signedTransaction() *wire.SignedTransaction {
	if b.decoded != nil {
		return b.decoded
	}
	ret := &wire.SignedTransaction{
		BodyBytes: b.bodyBytes,
		SigMap:    make([]wire.SignaturePair, 0, len(b.signatures)),
	}
	for _, sig := range b.signatures {
		ret.SigMap = append(
			ret.SigMap,
			wire.SignaturePair{
				KeyType:   keyType(sig.PublicKey),
				PublicKey: sig.PublicKey.Bytes(),
				Signature: sig.Bytes,
			},
		)
	}
	return ret
}

func (b *nodeBody) signedBy(publicKey keys.PublicKey) bool {
	return slices.ContainsFunc(
		b.signatures,
		func(sig Signature) bool { return sig.PublicKey.Equal(publicKey) },
	)
}

// Transaction holds the lifecycle shared by every transaction kind: a mutable request
// is frozen into one body per node, signed, and submitted. It must not be used from
// more than one goroutine at a time
type Transaction struct {
	builder       transactionBuilder
	id            ids.TransactionID
	nodeIds       []ids.AccountID
	fee           uint64
	feeSet        bool
	validDuration time.Duration
	memo          string
	frozen        bool
	freezing      atomic.Bool
	bodies        []*nodeBody
	signers       []transactionSigner
}

func (t *Transaction) init(builder transactionBuilder) {
	t.builder = builder
	t.validDuration = DefaultValidDuration
}

func (t *Transaction) checkMutable(field string) error {
	if t.frozen || t.freezing.Load() {
		return &FrozenRequestError{Field: field}
	}
	return nil
}

func (t *Transaction) Kind() wire.TransactionKind {
	return t.builder.kind()
}

func (t *Transaction) TransactionID() ids.TransactionID {
	return t.id
}

// SetTransactionID sets the transaction ID. Without one, freezing generates an ID
// paid for by the client's operator
func (t *Transaction) SetTransactionID(id ids.TransactionID) error {
	if err := t.checkMutable("transaction ID"); err != nil {
		return err
	}
	t.id = id
	return nil
}

func (t *Transaction) NodeAccountIDs() []ids.AccountID {
	return slices.Clone(t.nodeIds)
}

// SetNodeAccountIDs sets the nodes the transaction may be submitted to. Without any,
// freezing uses the client's nodes
func (t *Transaction) SetNodeAccountIDs(nodeIds ...ids.AccountID) error {
	if err := t.checkMutable("node account IDs"); err != nil {
		return err
	}
	t.nodeIds = slices.Clone(nodeIds)
	return nil
}

func (t *Transaction) MaxTransactionFee() uint64 {
	return t.fee
}

func (t *Transaction) SetMaxTransactionFee(fee uint64) error {
	if err := t.checkMutable("max transaction fee"); err != nil {
		return err
	}
	t.fee = fee
	t.feeSet = true
	return nil
}

func (t *Transaction) ValidDuration() time.Duration {
	return t.validDuration
}

func (t *Transaction) SetValidDuration(d time.Duration) error {
	if err := t.checkMutable("valid duration"); err != nil {
		return err
	}
	t.validDuration = d
	return nil
}

func (t *Transaction) TransactionMemo() string {
	return t.memo
}

func (t *Transaction) SetTransactionMemo(memo string) error {
	if err := t.checkMutable("memo"); err != nil {
		return err
	}
	if len(memo) > MaxMemoLength {
		return ErrMemoTooLong
	}
	t.memo = memo
	return nil
}

func (t *Transaction) IsFrozen() bool {
	return t.frozen
}

// Freeze builds the per-node bodies. The transaction ID falls back to a new ID for the
// client's operator and the nodes fall back to the client's nodes. Freezing a frozen
// transaction has no effect. The client may be nil when both are set explicitly
func (t *Transaction) Freeze(c *Client) error {
	if t.frozen {
		return nil
	}
	if !t.freezing.CompareAndSwap(false, true) {
		return ErrFreezeInProgress
	}
	defer t.freezing.Store(false)
	id := t.id
	if id.IsZero() {
		if c == nil || c.operator == nil {
			return ErrMissingIdentity
		}
		id = ids.NewTransactionID(c.operator.AccountID)
	}
	nodeIds := t.nodeIds
	if len(nodeIds) == 0 && c != nil {
		nodeIds = c.transactionNodes()
	}
	if len(nodeIds) == 0 {
		return ErrMissingNodes
	}
	fee := t.fee
	if !t.feeSet {
		fee = DefaultMaxTransactionFee
		if c != nil {
			fee = c.defaultMaxTransactionFee
		}
	}
	template, err := t.bodyTemplate(id, fee)
	if err != nil {
		return err
	}
	bodies := make([]*nodeBody, 0, len(nodeIds))
	for _, nodeID := range nodeIds {
		body := *template
		body.NodeAccountID = nodeID
		bodyBytes, err := wire.Marshal(&body)
		if err != nil {
			return fmt.Errorf("encode transaction body: %w", err)
		}
		bodies = append(bodies, &nodeBody{nodeID: nodeID, bodyBytes: bodyBytes})
	}
	t.id = id
	t.nodeIds = slices.Clone(nodeIds)
	t.fee = fee
	t.feeSet = true
	t.bodies = bodies
	t.frozen = true
	return nil
}

func (t *Transaction) bodyTemplate(id ids.TransactionID, fee uint64) (*wire.TransactionBody, error) {
	data, err := t.builder.buildData()
	if err != nil {
		return nil, err
	}
	dataBytes, err := wire.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s data: %w", t.builder.kind(), err)
	}
	return &wire.TransactionBody{
		TransactionID:  id,
		TransactionFee: fee,
		ValidDuration:  ids.NewDuration(t.validDuration),
		Memo:           t.memo,
		Kind:           t.builder.kind(),
		Data:           dataBytes,
	}, nil
}

// Sign signs every node body with the private key
func (t *Transaction) Sign(key keys.PrivateKey) error {
	return t.SignWith(key.PublicKey(), key.SignerFunc())
}

// SignWith signs every node body using the signer. Bodies the key has already signed
// keep their first signature
func (t *Transaction) SignWith(publicKey keys.PublicKey, signer keys.SignerFunc) error {
	if !t.frozen {
		return ErrRequestNotFrozen
	}
	sigs := make([][]byte, len(t.bodies))
	pending := false
	for idx, body := range t.bodies {
		if body.signedBy(publicKey) {
			continue
		}
		sig, err := signer(body.bodyBytes)
		if err != nil {
			return fmt.Errorf("sign body for node %s: %w", body.nodeID, err)
		}
		sigs[idx] = sig
		pending = true
	}
	if !pending {
		return nil
	}
	for idx, body := range t.bodies {
		if sigs[idx] == nil {
			continue
		}
		body.signatures = append(
			body.signatures,
			Signature{PublicKey: publicKey, Bytes: sigs[idx]},
		)
		body.decoded = nil
	}
	if !slices.ContainsFunc(
		t.signers,
		func(s transactionSigner) bool { return s.publicKey.Equal(publicKey) },
	) {
		t.signers = append(t.signers, transactionSigner{publicKey: publicKey, signer: signer})
	}
	return nil
}

// SignWithOperator freezes the transaction if needed and signs it as the client's operator
func (t *Transaction) SignWithOperator(c *Client) error {
	if c == nil || c.operator == nil {
		return ErrMissingOperator
	}
	if err := t.Freeze(c); err != nil {
		return err
	}
	return t.SignWith(c.operator.PublicKey, c.operator.Signer)
}

// RemoveSignature removes the key's signature from every node body that carries one
func (t *Transaction) RemoveSignature(publicKey keys.PublicKey) error {
	if !t.frozen {
		return ErrRequestNotFrozen
	}
	match := func(sig Signature) bool { return sig.PublicKey.Equal(publicKey) }
	found := false
	for _, body := range t.bodies {
		if !body.signedBy(publicKey) {
			continue
		}
		body.signatures = slices.DeleteFunc(body.signatures, match)
		body.decoded = nil
		found = true
	}
	if !found {
		return fmt.Errorf("%w %s", ErrSignatureNotFound, publicKey.StringRaw())
	}
	t.signers = slices.DeleteFunc(
		t.signers,
		func(s transactionSigner) bool { return s.publicKey.Equal(publicKey) },
	)
	return nil
}

// Signatures returns the signatures of each node body, in signing order
func (t *Transaction) Signatures() map[ids.AccountID][]Signature {
	ret := make(map[ids.AccountID][]Signature, len(t.bodies))
	for _, body := range t.bodies {
		ret[body.nodeID] = slices.Clone(body.signatures)
	}
	return ret
}

// IsAuthorizedBy returns true if the signatures on every node body satisfy the key
func (t *Transaction) IsAuthorizedBy(key keys.Key) bool {
	if !t.frozen {
		return false
	}
	for _, body := range t.bodies {
		hasSigned := func(publicKey keys.PublicKey) bool {
			for _, sig := range body.signatures {
				if sig.PublicKey.Equal(publicKey) {
					return publicKey.Verify(body.bodyBytes, sig.Bytes)
				}
			}
			return false
		}
		if !keys.IsSatisfiedBy(key, hasSigned) {
			return false
		}
	}
	return true
}

// TransactionHashes returns the hash of the signed transaction sent to each node
func (t *Transaction) TransactionHashes() (map[ids.AccountID][]byte, error) {
	if !t.frozen {
		return nil, ErrRequestNotFrozen
	}
	ret := make(map[ids.AccountID][]byte, len(t.bodies))
	for _, body := range t.bodies {
		data, err := body.signedTransaction().MarshalCBOR()
		if err != nil {
			return nil, err
		}
		ret[body.nodeID] = transactionHash(data)
	}
	return ret, nil
}

// ToBytes serializes the transaction. A frozen transaction is written as one signed
// transaction per node, and anything else as its body template and chosen nodes
func (t *Transaction) ToBytes() ([]byte, error) {
	list := wire.TransactionList{
		Version: wire.TransactionListVersion,
		Kind:    t.builder.kind(),
	}
	if !t.frozen {
		fee := t.fee
		if !t.feeSet {
			fee = 0
		}
		template, err := t.bodyTemplate(t.id, fee)
		if err != nil {
			return nil, err
		}
		list.Template = template
		list.Nodes = t.nodeIds
		return wire.Marshal(&list)
	}
	list.Transactions = make([]wire.SignedTransaction, 0, len(t.bodies))
	for _, body := range t.bodies {
		list.Transactions = append(list.Transactions, *body.signedTransaction())
	}
	return wire.Marshal(&list)
}

// Execute freezes the transaction if needed, signs it as the operator when the
// operator pays for it, and submits it
func (t *Transaction) Execute(ctx context.Context, c *Client) (*TransactionResponse, error) {
	return t.ExecuteWithTimeout(ctx, c, 0)
}

func (t *Transaction) ExecuteWithTimeout(
	ctx context.Context,
	c *Client,
	timeout time.Duration,
) (*TransactionResponse, error) {
	if err := t.prepare(c); err != nil {
		return nil, err
	}
	return execute[*wire.TransactionResponse, *TransactionResponse](
		ctx,
		c,
		&transactionExecutable{tx: t},
		timeout,
	)
}

// ExecuteAsync prepares the transaction on the calling goroutine and submits it in
// the background
func (t *Transaction) ExecuteAsync(ctx context.Context, c *Client) *Future[*TransactionResponse] {
	if err := t.prepare(c); err != nil {
		return completedFuture[*TransactionResponse](nil, err)
	}
	return executeAsync[*wire.TransactionResponse, *TransactionResponse](
		ctx,
		c,
		&transactionExecutable{tx: t},
		0,
	)
}

func (t *Transaction) prepare(c *Client) error {
	if c == nil {
		return ErrMissingNodes
	}
	if err := t.Freeze(c); err != nil {
		return err
	}
	if c.operator != nil && t.id.AccountID == c.operator.AccountID {
		return t.SignWith(c.operator.PublicKey, c.operator.Signer)
	}
	return nil
}

// derive returns a copy of the frozen transaction under a new transaction ID for the
// same payer, re-signed by the signers that signed the original
func (t *Transaction) derive(c *Client) (*Transaction, error) {
	if !t.frozen {
		return nil, ErrRequestNotFrozen
	}
	operatorSigned := false
	for _, sig := range t.bodies[0].signatures {
		replayable := slices.ContainsFunc(
			t.signers,
			func(s transactionSigner) bool { return s.publicKey.Equal(sig.PublicKey) },
		)
		if replayable {
			continue
		}
		if c.operator == nil || !c.operator.PublicKey.Equal(sig.PublicKey) {
			return nil, fmt.Errorf("%w: %s", ErrSignerNotReplayable, sig.PublicKey.StringRaw())
		}
		operatorSigned = true
	}
	ret := &Transaction{
		builder:       t.builder,
		id:            t.id.Regenerate(),
		nodeIds:       slices.Clone(t.nodeIds),
		fee:           t.fee,
		feeSet:        true,
		validDuration: t.validDuration,
		memo:          t.memo,
	}
	if err := ret.Freeze(c); err != nil {
		return nil, err
	}
	for _, signer := range t.signers {
		if err := ret.SignWith(signer.publicKey, signer.signer); err != nil {
			return nil, err
		}
	}
	if operatorSigned {
		if err := ret.SignWithOperator(c); err != nil {
			return nil, err
		}
	}
	if err := ret.prepare(c); err != nil {
		return nil, err
	}
	return ret, nil
}

func (t *Transaction) body(nodeID ids.AccountID) (*nodeBody, bool) {
	for _, body := range t.bodies {
		if body.nodeID == nodeID {
			return body, true
		}
	}
	return nil, false
}

// transactionExecutable submits a frozen transaction
type transactionExecutable struct {
	tx *Transaction
}

func (e *transactionExecutable) operationName() string {
	return e.tx.builder.kind().String()
}

func (e *transactionExecutable) method() wire.Method {
	return e.tx.builder.method()
}

func (e *transactionExecutable) nodeAccountIDs() []ids.AccountID {
	return e.tx.nodeIds
}

func (e *transactionExecutable) transactionID() ids.TransactionID {
	return e.tx.id
}

func (e *transactionExecutable) makeRequest(nodeID ids.AccountID) ([]byte, error) {
	body, ok := e.tx.body(nodeID)
	if !ok {
		return nil, fmt.Errorf("%w: no body for node %s", ErrMissingNodes, nodeID)
	}
	return body.signedTransaction().MarshalCBOR()
}

func (e *transactionExecutable) parseResponse(
	data []byte,
) (*wire.TransactionResponse, Status, error) {
	resp := &wire.TransactionResponse{}
	if err := wire.Unmarshal(data, resp); err != nil {
		return nil, StatusUnknown, err
	}
	return resp, Status(resp.Precheck), nil
}

func (e *transactionExecutable) shouldRetry(
	status Status,
	_ *wire.TransactionResponse,
) executionState {
	return precheckState(status)
}

func (e *transactionExecutable) mapResponse(
	nodeID ids.AccountID,
	_ *wire.TransactionResponse,
	request []byte,
) (*TransactionResponse, error) {
	return newTransactionResponse(e.tx, nodeID, transactionHash(request)), nil
}

// TransactionFromBytes decodes a transaction written by ToBytes into its concrete
// type, such as *FileDeleteTransaction
func TransactionFromBytes(data []byte) (Request, error) {
	list, err := wire.DecodeTransactionList(data)
	if err != nil {
		return nil, err
	}
	newFunc, ok := transactionKinds[list.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, list.Kind)
	}
	req, t := newFunc()
	if list.Template != nil {
		if err := t.loadTemplate(list); err != nil {
			return nil, err
		}
		return req, nil
	}
	if err := t.loadSigned(list); err != nil {
		return nil, err
	}
	return req, nil
}

func (t *Transaction) loadTemplate(list *wire.TransactionList) error {
	tmpl := list.Template
	if tmpl.Kind != list.Kind {
		return fmt.Errorf("%w: template kind %s", ErrInconsistentBody, tmpl.Kind)
	}
	if err := t.builder.decodeData(tmpl.Data); err != nil {
		return err
	}
	t.id = tmpl.TransactionID
	t.nodeIds = slices.Clone(list.Nodes)
	t.fee = tmpl.TransactionFee
	t.feeSet = tmpl.TransactionFee != 0
	t.validDuration = tmpl.ValidDuration.Duration()
	t.memo = tmpl.Memo
	return nil
}

func (t *Transaction) loadSigned(list *wire.TransactionList) error {
	var first *wire.TransactionBody
	bodies := make([]*nodeBody, 0, len(list.Transactions))
	for idx := range list.Transactions {
		signed := list.Transactions[idx]
		body, err := signed.Body()
		if err != nil {
			return err
		}
		if first == nil {
			first = body
			if first.Kind != list.Kind {
				return fmt.Errorf("%w: body kind %s", ErrInconsistentBody, first.Kind)
			}
		} else if !sameBody(first, body) {
			return fmt.Errorf("%w: node %s", ErrInconsistentBody, body.NodeAccountID)
		}
		sigs := make([]Signature, 0, len(signed.SigMap))
		for _, pair := range signed.SigMap {
			publicKey, err := publicKeyFromPair(pair)
			if err != nil {
				return err
			}
			sigs = append(sigs, Signature{PublicKey: publicKey, Bytes: pair.Signature})
		}
		bodies = append(
			bodies,
			&nodeBody{
				nodeID:     body.NodeAccountID,
				bodyBytes:  signed.BodyBytes,
				signatures: sigs,
				decoded:    &signed,
			},
		)
	}
	if err := t.builder.decodeData(first.Data); err != nil {
		return err
	}
	t.id = first.TransactionID
	t.fee = first.TransactionFee
	t.feeSet = true
	t.validDuration = first.ValidDuration.Duration()
	t.memo = first.Memo
	t.bodies = bodies
	t.nodeIds = make([]ids.AccountID, 0, len(bodies))
	for _, body := range bodies {
		t.nodeIds = append(t.nodeIds, body.nodeID)
	}
	t.frozen = true
	return nil
}

// sameBody returns true if two node bodies differ only in their node
func sameBody(a, b *wire.TransactionBody) bool {
	return a.TransactionID.Equal(b.TransactionID) &&
		a.TransactionFee == b.TransactionFee &&
		a.ValidDuration == b.ValidDuration &&
		a.Memo == b.Memo &&
		a.Kind == b.Kind &&
		bytes.Equal(a.Data, b.Data)
}

func keyType(publicKey keys.PublicKey) uint8 {
	if publicKey.Algorithm() == keys.AlgorithmECDSASecp256k1 {
		return wire.KeyTypeECDSASecp256k1
	}
	return wire.KeyTypeEd25519
}

func publicKeyFromPair(pair wire.SignaturePair) (keys.PublicKey, error) {
	switch pair.KeyType {
	case wire.KeyTypeEd25519:
		return keys.PublicKeyFromBytesEd25519(pair.PublicKey)
	case wire.KeyTypeECDSASecp256k1:
		return keys.PublicKeyFromBytesECDSA(pair.PublicKey)
	}
	return keys.PublicKeyFromBytes(pair.PublicKey)
}

// transactionHash is the SHA-384 digest of a signed transaction
func transactionHash(signedTransaction []byte) []byte {
	sum := sha512.Sum384(signedTransaction)
	return sum[:]
}

var transactionKinds = map[wire.TransactionKind]func() (Request, *Transaction){
	wire.TransactionKindFileDelete: func() (Request, *Transaction) {
		tx := NewFileDeleteTransaction()
		return tx, &tx.Transaction
	},
	wire.TransactionKindTopicDelete: func() (Request, *Transaction) {
		tx := NewTopicDeleteTransaction()
		return tx, &tx.Transaction
	},
	wire.TransactionKindCryptoTransfer: func() (Request, *Transaction) {
		tx := NewTransferTransaction()
		return tx, &tx.Transaction
	},
}
