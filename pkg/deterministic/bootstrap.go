package deterministic

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// PresignedDeployment is the keyless transaction that creates the deployer
// proxy. It carries no chain ID so the same bytes work on every chain that
// accepts unprotected transactions.
const PresignedDeployment = "0xf8a58085174876e800830186a08080b853604580600e600039806000f350fe7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffe03601600081602082378035828234f58015156039578182fd5b8082525050506014600cf31ba02222222222222222222222222222222222222222222222222222222222222222a02222222222222222222222222222222222222222222222222222222222222222"

// DeployerRuntimeCode is the code the presigned transaction leaves at
// DeployerAddress.
const DeployerRuntimeCode = "0x7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffe03601600081602082378035828234f58015156039578182fd5b8082525050506014600cf3"

// PresignedSigner is the one-time account that signed PresignedDeployment.
var PresignedSigner = common.HexToAddress("0x3fab184622dc19b6109349b94811493bf2a45362")

// BootstrapClient is the chain access needed to bootstrap the deployer.
type BootstrapClient interface {
	Client
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// BootstrapResult describes what Bootstrap did.
type BootstrapResult struct {
	Existed    bool
	FundingTx  *common.Hash
	DeployTx   *common.Hash
	Deployer   common.Address
	FundedWith *big.Int
}

// PresignedTransaction decodes PresignedDeployment.
func PresignedTransaction() (*types.Transaction, error) {
	raw, err := hexutil.Decode(PresignedDeployment)
	if err != nil {
		return nil, err
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("failed to decode presigned transaction: %w", err)
	}
	return tx, nil
}

// DeploymentCost is the balance the presigned signer needs to pay for the
// deployment.
func DeploymentCost(tx *types.Transaction) *big.Int {
	return new(big.Int).Mul(tx.GasPrice(), new(big.Int).SetUint64(tx.Gas()))
}

// Bootstrap deploys the deployer proxy with the presigned transaction. When the
// signer cannot pay for it, funder tops it up first. A nil funder turns a
// missing balance into an error.
func Bootstrap(ctx context.Context, client BootstrapClient, funder *ecdsa.PrivateKey) (*BootstrapResult, error) {
	result := &BootstrapResult{Deployer: DeployerAddress}

	exists, err := DeployerExists(ctx, client)
	if err != nil {
		return nil, err
	}
	if exists {
		result.Existed = true
		return result, nil
	}

	tx, err := PresignedTransaction()
	if err != nil {
		return nil, err
	}

	cost := DeploymentCost(tx)
	balance, err := client.BalanceAt(ctx, PresignedSigner, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", PresignedSigner.Hex(), err)
	}

	if balance.Cmp(cost) < 0 {
		if funder == nil {
			return nil, fmt.Errorf("presigned signer %s needs %s wei to deploy, has %s", PresignedSigner.Hex(), cost, balance)
		}
		missing := new(big.Int).Sub(cost, balance)
		hash, err := fund(ctx, client, funder, PresignedSigner, missing)
		if err != nil {
			return nil, err
		}
		result.FundingTx = &hash
		result.FundedWith = missing
	}

	if err := client.SendTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to send presigned deployment: %w", err)
	}
	hash := tx.Hash()
	result.DeployTx = &hash

	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for deployer deployment: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("deployer deployment %s reverted", hash.Hex())
	}

	return result, nil
}

func fund(ctx context.Context, client BootstrapClient, key *ecdsa.PrivateKey, to common.Address, value *big.Int) (common.Hash, error) {
	from := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce for %s: %w", from.Hex(), err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get chain ID: %w", err)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to suggest gas price: %w", err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      21000,
		To:       &to,
		Value:    value,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign funding transaction: %w", err)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to fund %s: %w", to.Hex(), err)
	}

	receipt, err := bind.WaitMined(ctx, client, signed)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed waiting for funding transaction: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Hash{}, fmt.Errorf("funding transaction %s reverted", signed.Hash().Hex())
	}
	return signed.Hash(), nil
}
