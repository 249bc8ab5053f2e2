package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-kit/internal/usecase"
)

// PredictionRenderer renders predicted deterministic addresses
type PredictionRenderer struct {
	out io.Writer
}

// NewPredictionRenderer creates a new prediction renderer
func NewPredictionRenderer(out io.Writer) *PredictionRenderer {
	return &PredictionRenderer{out: out}
}

// Render renders the prediction
func (r *PredictionRenderer) Render(prediction *usecase.DeterministicPrediction) error {
	renderPrediction(r.out, prediction)
	return nil
}

func renderPrediction(out io.Writer, prediction *usecase.DeterministicPrediction) {
	if prediction.Contract != "" {
		fmt.Fprint(out, field("Contract", nameStyle.Sprint(prediction.Contract)))
	}
	fmt.Fprint(out, field("Address", addressStyle.Sprint(prediction.Address.Hex())))
	fmt.Fprint(out, field("Salt", hashStyle.Sprint(prediction.Salt.Hex())))
	fmt.Fprint(out, field("Init code hash", hashStyle.Sprint(prediction.BytecodeHash.Hex())))
	fmt.Fprint(out, field("Deployer", prediction.Deployer.Hex()))
}

// DeployRenderer renders deterministic deployments
type DeployRenderer struct {
	out io.Writer
}

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out}
}

// Render renders the deployment result
func (r *DeployRenderer) Render(result *usecase.DeployDeterministicResult) error {
	name := result.Prediction.Contract
	if name == "" {
		name = "Contract"
	}
	address := result.Prediction.Address.Hex()

	switch {
	case result.Existed:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%s already deployed at %s", name, address)))
	case result.Prepared != nil:
		fmt.Fprintln(r.out, color.New(color.FgYellow).Sprintf("📋 Dry run: %s would be deployed at %s", name, address))
	default:
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deployed %s at %s", name, address)))
	}
	fmt.Fprintln(r.out)

	renderPrediction(r.out, result.Prediction)
	fmt.Fprint(r.out, field("Network", fmt.Sprintf("%s (%d)", result.Network, result.ChainID)))
	fmt.Fprint(r.out, field("Sender", result.From.Hex()))

	if result.TxHash != nil {
		fmt.Fprint(r.out, field("Transaction", hashStyle.Sprint(result.TxHash.Hex())))
	}
	if result.Receipt != nil {
		fmt.Fprint(r.out, field("Block", fmt.Sprintf("%d", result.Receipt.BlockNumber)))
		fmt.Fprint(r.out, field("Gas used", fmt.Sprintf("%d", result.Receipt.GasUsed)))
	}
	if result.Prepared != nil {
		fmt.Fprint(r.out, field("To", result.Prepared.To.Hex()))
		fmt.Fprint(r.out, field("Gas", fmt.Sprintf("%d", result.Prepared.Gas)))
		fmt.Fprint(r.out, field("Data", hashStyle.Sprint(result.Prepared.Data.String())))
	}
	return nil
}

// BootstrapRenderer renders deployer bootstraps
type BootstrapRenderer struct {
	out io.Writer
}

// NewBootstrapRenderer creates a new bootstrap renderer
func NewBootstrapRenderer(out io.Writer) *BootstrapRenderer {
	return &BootstrapRenderer{out: out}
}

// Render renders the bootstrap result
func (r *BootstrapRenderer) Render(result *usecase.BootstrapDeployerResult) error {
	if result.Existed {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deterministic deployer already present on %s", result.Network)))
	} else {
		fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Deterministic deployer deployed on %s", result.Network)))
	}
	fmt.Fprint(r.out, field("Deployer", addressStyle.Sprint(result.Deployer.Hex())))
	fmt.Fprint(r.out, field("Chain ID", fmt.Sprintf("%d", result.ChainID)))
	if result.FundingTx != nil {
		fmt.Fprint(r.out, field("Funding tx", hashStyle.Sprint(result.FundingTx.Hex())))
		fmt.Fprint(r.out, field("Funded with", fmt.Sprintf("%s wei", result.FundedWith)))
	}
	if result.DeployTx != nil {
		fmt.Fprint(r.out, field("Deploy tx", hashStyle.Sprint(result.DeployTx.Hex())))
	}
	return nil
}

var (
	_ Renderer[*usecase.DeterministicPrediction]   = (*PredictionRenderer)(nil)
	_ Renderer[*usecase.DeployDeterministicResult] = (*DeployRenderer)(nil)
	_ Renderer[*usecase.BootstrapDeployerResult]   = (*BootstrapRenderer)(nil)
)
