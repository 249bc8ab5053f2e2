package abiexport

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// aliasRegex matches the size-less integer aliases the type parser rejects.
var aliasRegex = regexp.MustCompile(`^(u?int)((\[[0-9]*\])*)$`)

// Signature returns the canonical signature of a function, event or error,
// e.g. "transfer(address,uint256)" or "submit((uint256,bytes)[])".
func Signature(item Item) (string, error) {
	types := make([]string, 0, len(item.Inputs))
	for _, input := range item.Inputs {
		t, err := canonicalType(input)
		if err != nil {
			return "", fmt.Errorf("%s: %w", item.Name, err)
		}
		types = append(types, t)
	}
	return fmt.Sprintf("%s(%s)", item.Name, strings.Join(types, ",")), nil
}

// canonicalType expands tuples into their component list and lets the
// go-ethereum type parser validate and normalise elementary types.
func canonicalType(param Param) (string, error) {
	if strings.HasPrefix(param.Type, "tuple") {
		components := make([]string, 0, len(param.Components))
		for _, component := range param.Components {
			t, err := canonicalType(component)
			if err != nil {
				return "", err
			}
			components = append(components, t)
		}
		suffix := strings.TrimPrefix(param.Type, "tuple")
		return "(" + strings.Join(components, ",") + ")" + suffix, nil
	}

	t := param.Type
	if m := aliasRegex.FindStringSubmatch(t); m != nil {
		t = m[1] + "256" + m[2]
	}

	parsed, err := abi.NewType(t, "", nil)
	if err != nil {
		return "", fmt.Errorf("invalid type %q: %w", param.Type, err)
	}
	return parsed.String(), nil
}

// CleanSignature turns a signature into an identifier-friendly export name:
// "transfer(address,uint256)" becomes "transfer_address_uint256".
func CleanSignature(signature string) string {
	clean := strings.NewReplacer(
		"(", "_",
		")", "_",
		",", "_",
	).Replace(signature)
	clean = strings.ReplaceAll(clean, "[]", "array")
	// Drop the underscore left by the closing parenthesis
	return clean[:len(clean)-1]
}

// eventKey identifies an event across contracts. Two events with the same
// signature but a different number of indexed inputs decode differently.
func eventKey(item Item) (string, error) {
	signature, err := Signature(item)
	if err != nil {
		return "", err
	}
	indexed := 0
	for _, input := range item.Inputs {
		if input.Indexed {
			indexed++
		}
	}
	return fmt.Sprintf("%s-%d", signature, indexed), nil
}
