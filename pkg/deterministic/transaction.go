package deterministic

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Reader is the chain access needed to prepare a deployment.
type Reader interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	ChainID(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
}

// Client is the chain access needed to send a deployment.
type Client interface {
	Reader
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// NonceSource hands out the nonce for the next transaction of an account.
type NonceSource interface {
	NextNonce(ctx context.Context, account common.Address) (uint64, error)
}

// Request is a prepared deployment transaction. The nonce is left out so the
// request can be signed later by whoever manages the account's nonces.
type Request struct {
	From    common.Address
	To      common.Address
	Data    []byte
	ChainID *big.Int
	Gas     uint64

	// Set for EIP-1559 chains
	GasTipCap *big.Int
	GasFeeCap *big.Int

	// Set for chains without a base fee
	GasPrice *big.Int
}

// Transaction builds the unsigned transaction for the given nonce.
func (r *Request) Transaction(nonce uint64) *types.Transaction {
	to := r.To
	if r.GasFeeCap != nil {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   r.ChainID,
			Nonce:     nonce,
			GasTipCap: r.GasTipCap,
			GasFeeCap: r.GasFeeCap,
			Gas:       r.Gas,
			To:        &to,
			Data:      r.Data,
		})
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: r.GasPrice,
		Gas:      r.Gas,
		To:       &to,
		Data:     r.Data,
	})
}

// PrepareResult is the outcome of GetOrPrepare. Request is nil when the
// contract already exists.
type PrepareResult struct {
	Address common.Address
	Request *Request
	Existed bool
}

// DeployResult is the outcome of GetOrDeploy. Hash is nil when the contract
// already exists.
type DeployResult struct {
	Address common.Address
	Hash    *common.Hash
	Existed bool
}

// DeployerExists reports whether the deployer proxy has code on the chain.
func DeployerExists(ctx context.Context, client Reader) (bool, error) {
	code, err := client.CodeAt(ctx, DeployerAddress, nil)
	if err != nil {
		return false, fmt.Errorf("failed to get deployer code: %w", err)
	}
	return len(code) > 0, nil
}

// GetOrPrepare returns the deterministic address of bytecode and, unless a
// contract already lives there, a prepared deployment request sent from from.
func GetOrPrepare(ctx context.Context, client Reader, from common.Address, salt common.Hash, bytecode []byte) (*PrepareResult, error) {
	exists, err := DeployerExists(ctx, client)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &DeployerNotDeployedError{Address: DeployerAddress}
	}

	address := Address(salt, bytecode)
	code, err := client.CodeAt(ctx, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get code at %s: %w", address.Hex(), err)
	}
	if len(code) > 0 {
		return &PrepareResult{
			Address: address,
			Existed: true,
		}, nil
	}

	call := FunctionData(salt, bytecode)
	request, err := prepareRequest(ctx, client, from, call)
	if err != nil {
		return nil, err
	}

	return &PrepareResult{
		Address: address,
		Request: request,
	}, nil
}

func prepareRequest(ctx context.Context, client Reader, from common.Address, call CallData) (*Request, error) {
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	request := &Request{
		From:    from,
		To:      call.To,
		Data:    call.Data,
		ChainID: chainID,
	}

	head, err := client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest header: %w", err)
	}

	if head.BaseFee != nil {
		tip, err := client.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas tip cap: %w", err)
		}
		request.GasTipCap = tip
		request.GasFeeCap = new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	} else {
		price, err := client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
		request.GasPrice = price
	}

	to := call.To
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:      from,
		To:        &to,
		GasTipCap: request.GasTipCap,
		GasFeeCap: request.GasFeeCap,
		GasPrice:  request.GasPrice,
		Data:      call.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	request.Gas = gas

	return request, nil
}

// DeployOption configures GetOrDeploy.
type DeployOption func(*deployOptions)

type deployOptions struct {
	nonces NonceSource
}

// WithNonceSource makes GetOrDeploy take nonces from source instead of
// querying the pending nonce.
func WithNonceSource(source NonceSource) DeployOption {
	return func(o *deployOptions) {
		o.nonces = source
	}
}

// GetOrDeploy deploys bytecode through the deployer proxy unless it already
// exists. It does not wait for the transaction to be mined.
func GetOrDeploy(ctx context.Context, client Client, key *ecdsa.PrivateKey, salt common.Hash, bytecode []byte, opts ...DeployOption) (*DeployResult, error) {
	options := &deployOptions{}
	for _, opt := range opts {
		opt(options)
	}

	from := crypto.PubkeyToAddress(key.PublicKey)
	prepared, err := GetOrPrepare(ctx, client, from, salt, bytecode)
	if err != nil {
		return nil, err
	}

	result := &DeployResult{
		Address: prepared.Address,
		Existed: prepared.Existed,
	}
	if prepared.Request == nil {
		return result, nil
	}

	hash, err := Send(ctx, client, key, prepared.Request, options.nonces)
	if err != nil {
		return nil, err
	}
	result.Hash = &hash
	return result, nil
}

// Send signs a prepared request with key and submits it. A nil nonces falls
// back to the client's pending nonce.
func Send(ctx context.Context, client Client, key *ecdsa.PrivateKey, request *Request, nonces NonceSource) (common.Hash, error) {
	from := crypto.PubkeyToAddress(key.PublicKey)

	var nonce uint64
	var err error
	if nonces != nil {
		nonce, err = nonces.NextNonce(ctx, from)
	} else {
		nonce, err = client.PendingNonceAt(ctx, from)
	}
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce for %s: %w", from.Hex(), err)
	}

	signed, err := types.SignTx(request.Transaction(nonce), types.LatestSignerForChainID(request.ChainID), key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return signed.Hash(), nil
}
