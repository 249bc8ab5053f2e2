package template

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"go/format"
	"go/token"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
	"github.com/trebuchet-org/treb-kit/pkg/abiexport"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GeneratedHeader marks every generated file
const GeneratedHeader = "// Code generated by trebkit artifacts export. DO NOT EDIT."

// reservedIdents are declared by every contract package
var reservedIdents = []string{"ABI", "Functions", "Events", "Errors", "Bytecode", "DeployedBytecode"}

// title upper-cases the first letter and keeps the rest. Casers hold state,
// so each call gets its own.
func title(word string) string {
	return cases.Title(language.Und, cases.NoLower).String(word)
}

var funcs = template.FuncMap{
	"literal": literal,
}

var contractTemplate = template.Must(template.New("contract").Funcs(funcs).Parse(GeneratedHeader + `

// Package {{.Package}} holds the ABI{{if .HasBytecode}} and bytecode{{end}} of {{.Contract}}.
package {{.Package}}

const (
{{- range .Entries}}
	// {{.Ident}} is {{.Signature}}
	{{.Ident}} = {{literal .JSON}}
{{- end}}
)

// Functions lists the function exports, constructor and fallbacks included
var Functions = []string{
{{- range .Functions}}
	{{.}},
{{- end}}
}

// Events lists the event exports
var Events = []string{
{{- range .Events}}
	{{.}},
{{- end}}
}

// Errors lists the error exports
var Errors = []string{
{{- range .Errors}}
	{{.}},
{{- end}}
}

// ABI is the JSON ABI: functions, then events, then errors
const ABI = {{literal .ABI}}
{{if .HasBytecode}}
const (
	Bytecode         = {{printf "%q" .Bytecode}}
	DeployedBytecode = {{printf "%q" .DeployedBytecode}}
)
{{end}}
// {{.ContractIdent}} bundles everything needed to deploy and call {{.Contract}}
var {{.ContractIdent}} = struct {
	Name string
	ABI  string
{{- if .HasBytecode}}
	Bytecode         string
	DeployedBytecode string
{{- end}}
}{
	Name: {{printf "%q" .Contract}},
	ABI:  ABI,
{{- if .HasBytecode}}
	Bytecode:         Bytecode,
	DeployedBytecode: DeployedBytecode,
{{- end}}
}
`))

var aggregateTemplate = template.Must(template.New("aggregate").Funcs(funcs).Parse(GeneratedHeader + `

package {{.Package}}

// {{.Name}} lists every {{.Kind}} of the exported contracts once
var {{.Name}} = []string{
{{- range .Items}}
	{{literal .}},
{{- end}}
}
`))

var indexTemplate = template.Must(template.New("index").Parse(GeneratedHeader + `

// Package {{.Package}} indexes the generated contract packages.
package {{.Package}}

// Contracts maps each contract name to the package generated for it
var Contracts = map[string]string{
{{- range .Entries}}
	{{printf "%q" .Contract}}: {{printf "%q" .Package}},
{{- end}}
}
`))

// ModuleGeneratorAdapter renders Go packages from ABI exports
type ModuleGeneratorAdapter struct{}

// NewModuleGeneratorAdapter creates a new module generator
func NewModuleGeneratorAdapter() *ModuleGeneratorAdapter {
	return &ModuleGeneratorAdapter{}
}

type contractEntry struct {
	Ident     string
	Signature string
	JSON      string
}

type contractData struct {
	Package          string
	Contract         string
	ContractIdent    string
	Entries          []contractEntry
	Functions        []string
	Events           []string
	Errors           []string
	ABI              string
	HasBytecode      bool
	Bytecode         string
	DeployedBytecode string
}

// PackageName lower-cases the contract name and keeps letters and digits.
// Names that are not valid package names get a prefix or suffix.
func (g *ModuleGeneratorAdapter) PackageName(contractName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(contractName) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	name := b.String()

	switch {
	case name == "":
		return "contract"
	case unicode.IsDigit(rune(name[0])):
		return "c" + name
	case token.IsKeyword(name), name == "main":
		return name + "contract"
	}
	return name
}

// GenerateContract renders the package of one contract
func (g *ModuleGeneratorAdapter) GenerateContract(ctx context.Context, module usecase.ContractModule) ([]byte, error) {
	artifact := module.Artifact
	contractIdent := Ident(artifact.ContractName)
	if lo.Contains(reservedIdents, contractIdent) {
		contractIdent += "Contract"
	}

	data := contractData{
		Package:       module.Package,
		Contract:      artifact.ContractName,
		ContractIdent: contractIdent,
		Functions:     []string{},
		Events:        []string{},
		Errors:        []string{},
		HasBytecode:   artifact.HasBytecode(),
	}
	if data.HasBytecode {
		data.Bytecode = string(artifact.Bytecode)
		data.DeployedBytecode = string(artifact.DeployedBytecode)
	}

	taken := make(map[string]bool, len(module.Exports.Entries)+len(reservedIdents)+1)
	for _, ident := range reservedIdents {
		taken[ident] = true
	}
	taken[contractIdent] = true

	grouped := map[abiexport.Kind][]json.RawMessage{}
	for _, entry := range module.Exports.Entries {
		raw, err := json.Marshal(entry.Item)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", entry.Name, err)
		}

		ident := uniqueIdent(Ident(entry.Name), entry.Kind, taken)
		data.Entries = append(data.Entries, contractEntry{
			Ident:     ident,
			Signature: entry.Signature,
			JSON:      string(raw),
		})
		grouped[entry.Kind] = append(grouped[entry.Kind], raw)

		switch entry.Kind {
		case abiexport.KindFunction:
			data.Functions = append(data.Functions, ident)
		case abiexport.KindEvent:
			data.Events = append(data.Events, ident)
		case abiexport.KindError:
			data.Errors = append(data.Errors, ident)
		}
	}

	ordered := append(append(grouped[abiexport.KindFunction], grouped[abiexport.KindEvent]...), grouped[abiexport.KindError]...)
	abi, err := json.Marshal(lo.Ternary(ordered == nil, []json.RawMessage{}, ordered))
	if err != nil {
		return nil, fmt.Errorf("failed to encode abi of %s: %w", artifact.ContractName, err)
	}
	data.ABI = string(abi)

	return render(contractTemplate, data)
}

// GenerateAggregate renders the cross-contract list of one item kind
func (g *ModuleGeneratorAdapter) GenerateAggregate(ctx context.Context, pkg string, kind abiexport.Kind, items []abiexport.Item) ([]byte, error) {
	encoded := make([]string, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s %s: %w", kind, item.Name, err)
		}
		encoded = append(encoded, string(raw))
	}

	return render(aggregateTemplate, struct {
		Package string
		Name    string
		Kind    abiexport.Kind
		Items   []string
	}{
		Package: pkg,
		Name:    AggregateName(kind),
		Kind:    kind,
		Items:   encoded,
	})
}

// GenerateIndex renders the contract name to package index
func (g *ModuleGeneratorAdapter) GenerateIndex(ctx context.Context, pkg string, entries []usecase.IndexEntry) ([]byte, error) {
	return render(indexTemplate, struct {
		Package string
		Entries []usecase.IndexEntry
	}{
		Package: pkg,
		Entries: entries,
	})
}

// AggregateName is the variable holding the aggregate of kind
func AggregateName(kind abiexport.Kind) string {
	switch kind {
	case abiexport.KindEvent:
		return "Events"
	case abiexport.KindError:
		return "Errors"
	}
	return "Functions"
}

// Ident converts an export name into an exported Go identifier:
// "transfer_address_uint256" becomes "TransferAddressUint256".
func Ident(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, word := range words {
		b.WriteString(title(word))
	}
	ident := b.String()

	switch {
	case ident == "":
		return "Item"
	case unicode.IsDigit(rune(ident[0])):
		return "X" + ident
	}
	return ident
}

// uniqueIdent appends the kind, then a counter, until ident is free
func uniqueIdent(ident string, kind abiexport.Kind, taken map[string]bool) string {
	candidate := ident
	if taken[candidate] {
		candidate = ident + title(string(kind))
	}
	base := candidate
	for i := 2; taken[candidate]; i++ {
		candidate = base + strconv.Itoa(i)
	}
	taken[candidate] = true
	return candidate
}

// literal quotes s as a raw string unless it contains a backtick
func literal(s string) string {
	if strings.ContainsRune(s, '`') {
		return strconv.Quote(s)
	}
	return "`" + s + "`"
}

func render(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute %s template: %w", tmpl.Name(), err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format %s source: %w", tmpl.Name(), err)
	}
	return formatted, nil
}

// Ensure the adapter implements the interface
var _ usecase.ModuleGenerator = (*ModuleGeneratorAdapter)(nil)
