package abiexport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Item types as they appear in an ABI.
const (
	TypeFunction    = "function"
	TypeConstructor = "constructor"
	TypeFallback    = "fallback"
	TypeReceive     = "receive"
	TypeEvent       = "event"
	TypeError       = "error"
)

// Artifact is a compiled contract artifact as written by Hardhat or Foundry.
type Artifact struct {
	Format                 string          `json:"_format,omitempty"`
	ContractName           string          `json:"contractName,omitempty"`
	SourceName             string          `json:"sourceName,omitempty"`
	ABI                    []Item          `json:"abi"`
	Bytecode               Bytecode        `json:"bytecode"`
	DeployedBytecode       Bytecode        `json:"deployedBytecode"`
	LinkReferences         json.RawMessage `json:"linkReferences,omitempty"`
	DeployedLinkReferences json.RawMessage `json:"deployedLinkReferences,omitempty"`

	raw []byte
}

// Bytecode accepts both the Hardhat form ("0x...") and the Foundry form
// ({"object": "0x..."}).
type Bytecode string

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bytecode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*b = ""
		return nil
	}

	var value string
	if data[0] == '{' {
		var object struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(data, &object); err != nil {
			return fmt.Errorf("failed to parse bytecode object: %w", err)
		}
		value = object.Object
	} else if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("failed to parse bytecode: %w", err)
	}

	if value != "" && !strings.HasPrefix(value, "0x") {
		value = "0x" + value
	}
	*b = Bytecode(value)
	return nil
}

// Item is a single ABI entry. Raw keeps the entry's original JSON so it can be
// emitted unchanged.
type Item struct {
	Type            string  `json:"type"`
	Name            string  `json:"name,omitempty"`
	Inputs          []Param `json:"inputs,omitempty"`
	Outputs         []Param `json:"outputs,omitempty"`
	StateMutability string  `json:"stateMutability,omitempty"`
	Anonymous       bool    `json:"anonymous,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var item plain
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	// An entry without a type is a function
	if item.Type == "" {
		item.Type = TypeFunction
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return err
	}
	item.Raw = compact.Bytes()

	*i = Item(item)
	return nil
}

// MarshalJSON emits the original entry when available.
func (i Item) MarshalJSON() ([]byte, error) {
	if len(i.Raw) > 0 {
		return i.Raw, nil
	}
	type plain Item
	return json.Marshal(plain(i))
}

// Param is a function, event or error parameter.
type Param struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	InternalType string  `json:"internalType,omitempty"`
	Indexed      bool    `json:"indexed,omitempty"`
	Components   []Param `json:"components,omitempty"`
}

// ParseArtifact decodes artifact JSON.
func ParseArtifact(data []byte) (*Artifact, error) {
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return nil, fmt.Errorf("failed to compact artifact: %w", err)
	}
	artifact.raw = compact.Bytes()

	return &artifact, nil
}

// LoadArtifact reads and parses the artifact at path. Artifacts without a
// contractName (Foundry) are named after their file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	artifact, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if artifact.ContractName == "" {
		artifact.ContractName = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return artifact, nil
}

// IsContract reports whether the artifact exposes any function or fallback.
// Libraries have neither and are skipped by the exporter.
func (a *Artifact) IsContract() bool {
	for _, item := range a.ABI {
		if item.Type == TypeFunction || item.Type == TypeFallback {
			return true
		}
	}
	return false
}

// HasBytecode reports whether the artifact is deployable.
func (a *Artifact) HasBytecode() bool {
	return a.Bytecode != "" && a.Bytecode != "0x"
}

// Hash returns the content hash used for change detection.
func (a *Artifact) Hash() (string, error) {
	raw := a.raw
	if raw == nil {
		// Built in memory, hash the encoded form instead
		encoded, err := json.Marshal(a)
		if err != nil {
			return "", fmt.Errorf("failed to encode artifact %s: %w", a.ContractName, err)
		}
		raw = encoded
	}
	return crypto.Keccak256Hash([]byte(a.ContractName+":"), raw).Hex(), nil
}
