// Package deterministic deploys contracts through the keyless deterministic
// deployment proxy. Addresses depend only on the salt and the init code, never
// on the deploying account's nonce.
package deterministic

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// DeployerAddress is where the deterministic deployment proxy lives on every
// chain it has been bootstrapped on.
var DeployerAddress = common.HexToAddress("0x4e59b44847b379578588920cA78FbF26c0B4956C")

// BytecodeError is returned when bytecode is not valid hex.
type BytecodeError struct {
	Bytecode string
	Err      error
}

func (e *BytecodeError) Error() string {
	return fmt.Sprintf("bytecode not hex: %s", truncate(e.Bytecode, 66))
}

func (e *BytecodeError) Unwrap() error {
	return e.Err
}

// DeployerNotDeployedError is returned when the deployer proxy has no code on
// the target chain.
type DeployerNotDeployedError struct {
	Address common.Address
}

func (e *DeployerNotDeployedError) Error() string {
	return fmt.Sprintf("DeterministicDeployer not deployed at %s! Please deploy DeterministicDeployer first or use pre-signed deployment.", e.Address.Hex())
}

// CallData is the transaction target and payload of a deterministic deployment.
type CallData struct {
	To   common.Address
	Data []byte
}

// ParseBytecode decodes 0x-prefixed hex bytecode.
func ParseBytecode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	code, err := hexutil.Decode(s)
	if err != nil {
		return nil, &BytecodeError{Bytecode: s, Err: err}
	}
	return code, nil
}

// ParseSalt decodes a hex salt of up to 32 bytes. Shorter salts are read as
// a number and left-padded, so "0x1234" is uint256(0x1234) and not
// bytes32(hex"1234").
func ParseSalt(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if len(s)%2 == 1 {
		s = "0x0" + s[2:]
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return common.Hash{}, fmt.Errorf("salt not hex: %w", err)
	}
	if len(b) > common.HashLength {
		return common.Hash{}, fmt.Errorf("salt longer than %d bytes", common.HashLength)
	}
	return common.BytesToHash(b), nil
}

// Address computes the CREATE2 address of bytecode deployed with salt.
func Address(salt common.Hash, bytecode []byte) common.Address {
	return crypto.CreateAddress2(DeployerAddress, salt, crypto.Keccak256(bytecode))
}

// FunctionData encodes the deployer fallback call: the salt followed by the
// init code.
func FunctionData(salt common.Hash, bytecode []byte) CallData {
	data := make([]byte, 0, common.HashLength+len(bytecode))
	data = append(data, salt.Bytes()...)
	data = append(data, bytecode...)
	return CallData{
		To:   DeployerAddress,
		Data: data,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
