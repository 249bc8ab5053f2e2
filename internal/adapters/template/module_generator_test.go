package template

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
	"github.com/trebuchet-org/treb-kit/pkg/abiexport"
)

const tokenArtifact = `{
  "contractName": "Token",
  "abi": [
    {"type": "constructor", "inputs": [{"name": "supply", "type": "uint256"}], "stateMutability": "nonpayable"},
    {"type": "function", "name": "transfer", "inputs": [{"name": "to", "type": "address"}, {"name": "amount", "type": "uint256"}], "outputs": [{"name": "", "type": "bool"}], "stateMutability": "nonpayable"},
    {"type": "function", "name": "transfer", "inputs": [{"name": "to", "type": "address"}], "outputs": [], "stateMutability": "nonpayable"},
    {"type": "event", "name": "Transfer", "inputs": [{"name": "from", "type": "address", "indexed": true}], "anonymous": false},
    {"type": "function", "name": "bytecode", "inputs": [], "outputs": [{"name": "", "type": "bytes"}], "stateMutability": "view"},
    {"type": "error", "name": "Insufficient", "inputs": [{"name": "note", "type": "string"}]},
    {"type": "receive", "stateMutability": "payable"}
  ],
  "bytecode": "0x6080",
  "deployedBytecode": "0x6081"
}`

func generate(t *testing.T, data string, pkg string) (string, *ast.File) {
	t.Helper()

	artifact, err := abiexport.ParseArtifact([]byte(data))
	require.NoError(t, err)
	exports, err := abiexport.ResolveExports(artifact.ABI)
	require.NoError(t, err)

	source, err := NewModuleGeneratorAdapter().GenerateContract(context.Background(), usecase.ContractModule{
		Artifact: artifact,
		Exports:  exports,
		Package:  pkg,
	})
	require.NoError(t, err)

	file, err := parser.ParseFile(token.NewFileSet(), pkg+".go", source, parser.ParseComments)
	require.NoError(t, err, string(source))
	return string(source), file
}

func declared(file *ast.File) map[string]bool {
	names := make(map[string]bool)
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok {
			continue
		}
		for _, s := range gen.Specs {
			if value, ok := s.(*ast.ValueSpec); ok {
				for _, name := range value.Names {
					names[name.Name] = true
				}
			}
		}
	}
	return names
}

func TestGenerateContract(t *testing.T) {
	source, file := generate(t, tokenArtifact, "token")

	assert.True(t, strings.HasPrefix(source, GeneratedHeader+"\n"))
	assert.Equal(t, "token", file.Name.Name)

	names := declared(file)
	for _, name := range []string{
		"Constructor",
		"Transfer",
		"TransferAddress",
		"TransferEvent",
		"BytecodeFunction",
		"Insufficient",
		"Receive",
		"Functions",
		"Events",
		"Errors",
		"ABI",
		"Bytecode",
		"DeployedBytecode",
		"Token",
	} {
		assert.True(t, names[name], "missing %s in\n%s", name, source)
	}

	assert.Contains(t, source, `Bytecode         = "0x6080"`)
	assert.Contains(t, source, `DeployedBytecode = "0x6081"`)
	assert.Contains(t, source, "// TransferAddress is transfer(address)")
}

func TestGenerateContractIdentCollisions(t *testing.T) {
	data := `{"contractName":"Transfer","abi":[
		{"type":"function","name":"transfer","inputs":[],"outputs":[]},
		{"type":"event","name":"Transfer","inputs":[]},
		{"type":"error","name":"_transfer","inputs":[]}
	],"bytecode":"0x"}`

	source, file := generate(t, data, "transfer")
	names := declared(file)

	assert.True(t, names["Transfer"], source)
	assert.True(t, names["TransferFunction"], source)
	assert.True(t, names["TransferEvent"], source)
	assert.True(t, names["TransferError"], source)
	assert.False(t, names["Bytecode"], "interfaces have no bytecode")
}

func TestGenerateContractBacktick(t *testing.T) {
	data := "{\"contractName\":\"Odd\",\"abi\":[{\"type\":\"function\",\"name\":\"f\",\"inputs\":[{\"name\":\"a`b\",\"type\":\"uint8\"}],\"outputs\":[]}],\"bytecode\":\"0x00\"}"

	source, _ := generate(t, data, "odd")
	assert.Contains(t, source, `F = "{\"type\":\"function\"`)
}

func TestGenerateContractReservedName(t *testing.T) {
	_, file := generate(t, `{"contractName":"ABI","abi":[],"bytecode":"0x00"}`, "abi")
	assert.True(t, declared(file)["ABIContract"])
}

func TestGenerateContractEmptyABI(t *testing.T) {
	source, file := generate(t, `{"contractName":"Empty","abi":[],"bytecode":"0x00","deployedBytecode":"0x00"}`, "empty")
	assert.Contains(t, source, "const ABI = `[]`")
	assert.True(t, declared(file)["Empty"])
}

func TestGenerateAggregateAndIndex(t *testing.T) {
	generator := NewModuleGeneratorAdapter()
	artifact, err := abiexport.ParseArtifact([]byte(tokenArtifact))
	require.NoError(t, err)

	events, err := abiexport.UniqueEvents([]*abiexport.Artifact{artifact})
	require.NoError(t, err)

	source, err := generator.GenerateAggregate(context.Background(), "bindings", abiexport.KindEvent, events)
	require.NoError(t, err)
	file, err := parser.ParseFile(token.NewFileSet(), "events.go", source, 0)
	require.NoError(t, err)
	assert.True(t, declared(file)["Events"])
	assert.Contains(t, string(source), `"name":"Transfer"`)

	source, err = generator.GenerateAggregate(context.Background(), "bindings", abiexport.KindError, nil)
	require.NoError(t, err)
	assert.Regexp(t, `var Errors = \[\]string\{\s*\}`, string(source))

	source, err = generator.GenerateIndex(context.Background(), "bindings", []usecase.IndexEntry{
		{Contract: "Token", Package: "token"},
		{Contract: "Vault", Package: "vault"},
	})
	require.NoError(t, err)
	file, err = parser.ParseFile(token.NewFileSet(), "contracts.go", source, 0)
	require.NoError(t, err)
	assert.True(t, declared(file)["Contracts"])
	assert.Contains(t, string(source), `"Token": "token",`)
}

func TestPackageName(t *testing.T) {
	generator := NewModuleGeneratorAdapter()
	tests := map[string]string{
		"Token":          "token",
		"ERC20Permit":    "erc20permit",
		"My_Contract$V2": "mycontractv2",
		"1inch":          "c1inch",
		"Type":           "typecontract",
		"Main":           "maincontract",
		"$$":             "contract",
	}
	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, generator.PackageName(input))
		})
	}
}

func TestIdent(t *testing.T) {
	tests := map[string]string{
		"transfer":                 "Transfer",
		"balanceOf":                "BalanceOf",
		"transfer_address_uint256": "TransferAddressUint256",
		"_constructor":             "Constructor",
		"set_uint256array":         "SetUint256array",
		"__":                       "Item",
	}
	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, Ident(input))
		})
	}
}
