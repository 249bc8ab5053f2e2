package abiexport

import (
	"fmt"
	"strconv"
)

// Kind groups an exported item.
type Kind string

const (
	KindFunction Kind = "function"
	KindEvent    Kind = "event"
	KindError    Kind = "error"
)

// ConstructorExportName is used for the constructor since "constructor" is
// reserved in most target languages.
const ConstructorExportName = "_constructor"

// UnknownItemTypeError is returned for an ABI entry of unrecognised type.
type UnknownItemTypeError struct {
	Type string
	Name string
}

func (e *UnknownItemTypeError) Error() string {
	return fmt.Sprintf("invalid abi type %q for item %q", e.Type, e.Name)
}

// Entry is one exported ABI item.
type Entry struct {
	Name      string
	Kind      Kind
	Signature string
	Item      Item
}

// Exports holds the collision-free exports of a single ABI, in ABI order.
type Exports struct {
	Entries []Entry

	// Export names grouped like the generated lists
	ABI       []string
	Functions []string
	Events    []string
	Errors    []string

	byName map[string]int
}

// Get returns the item exported under name.
func (e *Exports) Get(name string) (Item, bool) {
	idx, ok := e.byName[name]
	if !ok {
		return Item{}, false
	}
	return e.Entries[idx].Item, true
}

func (e *Exports) add(name string, kind Kind, signature string, item Item) {
	e.byName[name] = len(e.Entries)
	e.Entries = append(e.Entries, Entry{
		Name:      name,
		Kind:      kind,
		Signature: signature,
		Item:      item,
	})
	e.ABI = append(e.ABI, name)
	switch kind {
	case KindFunction:
		e.Functions = append(e.Functions, name)
	case KindEvent:
		e.Events = append(e.Events, name)
	case KindError:
		e.Errors = append(e.Errors, name)
	}
}

// ResolveExports derives a unique export name for every ABI item.
//
// The constructor is exported as "_constructor", fallback and receive under
// their type. Every other item is exported under its plain name if that is
// still free and under its cleaned signature otherwise; items repeating an
// already seen signature are skipped.
func ResolveExports(items []Item) (*Exports, error) {
	exports := &Exports{
		ABI:       []string{},
		Functions: []string{},
		Events:    []string{},
		Errors:    []string{},
		byName:    make(map[string]int),
	}
	names := make(map[string]bool)
	signatures := make(map[string]bool)

	for _, item := range items {
		switch item.Type {
		case TypeConstructor:
			names[ConstructorExportName] = true
			exports.add(ConstructorExportName, KindFunction, "constructor", item)
			continue
		case TypeFallback, TypeReceive:
			names[item.Type] = true
			exports.add(item.Type, KindFunction, item.Type+"()", item)
			continue
		}

		var kind Kind
		switch item.Type {
		case TypeFunction:
			kind = KindFunction
		case TypeEvent:
			kind = KindEvent
		case TypeError:
			kind = KindError
		default:
			return nil, &UnknownItemTypeError{Type: item.Type, Name: item.Name}
		}

		signature, err := Signature(item)
		if err != nil {
			return nil, err
		}
		if signatures[signature] {
			continue
		}
		signatures[signature] = true

		name := item.Name
		if names[name] {
			name = CleanSignature(signature)
		}
		// A plain name can already hold the cleaned signature of an overload
		base := name
		for i := 2; names[name]; i++ {
			name = base + "_" + strconv.Itoa(i)
		}
		names[name] = true
		exports.add(name, kind, signature, item)
	}

	return exports, nil
}
