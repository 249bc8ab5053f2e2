package deterministic

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ethereum/go-ethereum/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, withDeployer bool) (*simulated.Backend, *ecdsa.PrivateKey) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	balance := new(big.Int).Mul(big.NewInt(1000), big.NewInt(params.Ether))
	alloc := types.GenesisAlloc{
		crypto.PubkeyToAddress(key.PublicKey): {Balance: balance},
	}
	if withDeployer {
		alloc[DeployerAddress] = types.Account{
			Balance: big.NewInt(0),
			Code:    hexutil.MustDecode(DeployerRuntimeCode),
		}
	}

	backend := simulated.NewBackend(alloc)
	t.Cleanup(func() { _ = backend.Close() })
	return backend, key
}

type countingNonces struct {
	calls int
	next  uint64
}

func (c *countingNonces) NextNonce(_ context.Context, _ common.Address) (uint64, error) {
	c.calls++
	n := c.next
	c.next++
	return n, nil
}

func TestGetOrDeploy(t *testing.T) {
	ctx := context.Background()
	backend, key := newBackend(t, true)
	client := backend.Client()

	salt := common.HexToHash("0x01")
	code := hexutil.MustDecode(counterInitCode)
	expected := Address(salt, code)

	result, err := GetOrDeploy(ctx, client, key, salt, code)
	require.NoError(t, err)
	assert.Equal(t, expected, result.Address)
	assert.False(t, result.Existed)
	require.NotNil(t, result.Hash)

	backend.Commit()

	receipt, err := client.TransactionReceipt(ctx, *result.Hash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	deployed, err := client.CodeAt(ctx, expected, nil)
	require.NoError(t, err)
	assert.Equal(t, counterRuntimeCode, hexutil.Encode(deployed))

	t.Run("second call finds the contract", func(t *testing.T) {
		again, err := GetOrDeploy(ctx, client, key, salt, code)
		require.NoError(t, err)
		assert.True(t, again.Existed)
		assert.Nil(t, again.Hash)
		assert.Equal(t, expected, again.Address)
	})
}

func TestGetOrDeployWithNonceSource(t *testing.T) {
	ctx := context.Background()
	backend, key := newBackend(t, true)
	client := backend.Client()
	nonces := &countingNonces{}

	code := hexutil.MustDecode(counterInitCode)
	first, err := GetOrDeploy(ctx, client, key, common.HexToHash("0x01"), code, WithNonceSource(nonces))
	require.NoError(t, err)
	// Second deployment goes out before the first is mined
	second, err := GetOrDeploy(ctx, client, key, common.HexToHash("0x02"), code, WithNonceSource(nonces))
	require.NoError(t, err)

	assert.Equal(t, 2, nonces.calls)
	assert.NotEqual(t, first.Address, second.Address)

	backend.Commit()

	for _, result := range []*DeployResult{first, second} {
		receipt, err := client.TransactionReceipt(ctx, *result.Hash)
		require.NoError(t, err)
		assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)
	}
}

func TestGetOrPrepare(t *testing.T) {
	ctx := context.Background()
	backend, key := newBackend(t, true)
	client := backend.Client()
	from := crypto.PubkeyToAddress(key.PublicKey)

	code := hexutil.MustDecode(counterInitCode)
	result, err := GetOrPrepare(ctx, client, from, common.Hash{}, code)
	require.NoError(t, err)
	require.NotNil(t, result.Request)
	assert.False(t, result.Existed)

	request := result.Request
	assert.Equal(t, from, request.From)
	assert.Equal(t, DeployerAddress, request.To)
	assert.Equal(t, FunctionData(common.Hash{}, code).Data, request.Data)
	assert.Equal(t, big.NewInt(1337), request.ChainID)
	assert.NotZero(t, request.Gas)
	// Simulated chain has a base fee
	assert.NotNil(t, request.GasFeeCap)
	assert.Nil(t, request.GasPrice)

	tx := request.Transaction(7)
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, DeployerAddress, *tx.To())
}

func TestSendPreparedRequest(t *testing.T) {
	ctx := context.Background()
	backend, key := newBackend(t, true)
	client := backend.Client()
	from := crypto.PubkeyToAddress(key.PublicKey)

	exists, err := DeployerExists(ctx, client)
	require.NoError(t, err)
	assert.True(t, exists)

	code := hexutil.MustDecode(counterInitCode)
	prepared, err := GetOrPrepare(ctx, client, from, common.HexToHash("0x03"), code)
	require.NoError(t, err)

	nonces := &countingNonces{}
	hash, err := Send(ctx, client, key, prepared.Request, nonces)
	require.NoError(t, err)
	assert.Equal(t, 1, nonces.calls)
	backend.Commit()

	receipt, err := client.TransactionReceipt(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, receipt.Status)

	deployed, err := client.CodeAt(ctx, prepared.Address, nil)
	require.NoError(t, err)
	assert.Equal(t, counterRuntimeCode, hexutil.Encode(deployed))
}

func TestGetOrPrepareWithoutDeployer(t *testing.T) {
	ctx := context.Background()
	backend, key := newBackend(t, false)

	_, err := GetOrPrepare(ctx, backend.Client(), crypto.PubkeyToAddress(key.PublicKey), common.Hash{}, hexutil.MustDecode(counterInitCode))
	require.Error(t, err)
	var notDeployed *DeployerNotDeployedError
	assert.ErrorAs(t, err, &notDeployed)
}

func TestRequestLegacyTransaction(t *testing.T) {
	request := &Request{
		To:       DeployerAddress,
		Data:     []byte{0x01},
		ChainID:  big.NewInt(1),
		Gas:      50000,
		GasPrice: big.NewInt(params.GWei),
	}
	tx := request.Transaction(3)
	assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
	assert.Equal(t, uint64(3), tx.Nonce())
	assert.Equal(t, big.NewInt(params.GWei), tx.GasPrice())
}

func TestPresignedTransaction(t *testing.T) {
	tx, err := PresignedTransaction()
	require.NoError(t, err)

	assert.Equal(t, uint64(0), tx.Nonce())
	assert.Equal(t, uint64(100000), tx.Gas())
	assert.Equal(t, big.NewInt(100*params.GWei), tx.GasPrice())
	assert.Nil(t, tx.To(), "presigned transaction creates a contract")
	assert.False(t, tx.Protected())

	expectedCost, _ := new(big.Int).SetString("10000000000000000", 10)
	assert.Equal(t, expectedCost, DeploymentCost(tx))
}

func TestBootstrapWhenDeployed(t *testing.T) {
	backend, _ := newBackend(t, true)

	result, err := Bootstrap(context.Background(), backend.Client(), nil)
	require.NoError(t, err)
	assert.True(t, result.Existed)
	assert.Nil(t, result.DeployTx)
	assert.Equal(t, DeployerAddress, result.Deployer)
}

func TestBootstrapWithoutFunder(t *testing.T) {
	backend, _ := newBackend(t, false)

	_, err := Bootstrap(context.Background(), backend.Client(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs 10000000000000000 wei")
}
