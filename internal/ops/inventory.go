package ops

import (
	"context"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	_ "embed"
)

//go:embed scripts/inventory.ps1
var inventoryScript string

//go:embed inventory.cue
var inventorySchema []byte

var (
	invCtx    *cue.Context
	invSchema cue.Value
)

func init() {
	invCtx = cuecontext.New()
	compiled := invCtx.CompileBytes(inventorySchema)
	if compiled.Err() != nil {
		panic(compiled.Err())
	}
	invSchema = compiled.LookupPath(cue.ParsePath("#Inventory"))
	if invSchema.Err() != nil {
		panic(invSchema.Err())
	}
}

// Inventory gathers OS and hardware facts through the scripting host and
// prints a formatted summary. Malformed output is an ordinary operation
// failure; a machine without a GPU is not.
func (o *Ops) Inventory(ctx context.Context) (string, error) {
	res, err := o.powershell(ctx, inventoryScript)
	if err != nil {
		return "", err
	}

	report, err := ParseInventory([]byte(res.Stdout))
	if err != nil {
		return "", fmt.Errorf("parsing inventory output: %w", err)
	}

	fmt.Fprint(o.out, report.Render())
	return "", nil
}

// InventoryReport is the structured blob the inventory script emits.
type InventoryReport struct {
	OS struct {
		Caption string `json:"caption"`
		Version string `json:"version"`
		Build   string `json:"build"`
	} `json:"os"`
	CPU struct {
		Name         string  `json:"name"`
		Manufacturer string  `json:"manufacturer,omitempty"`
		ClockMHz     float64 `json:"clockMHz,omitempty"`
		Cores        int     `json:"cores,omitempty"`
		Logical      int     `json:"logical,omitempty"`
	} `json:"cpu"`
	MemoryBytes uint64 `json:"memoryBytes"`
	Board       *struct {
		Manufacturer string `json:"manufacturer,omitempty"`
		Product      string `json:"product,omitempty"`
	} `json:"board,omitempty"`
	GPU *struct {
		Name        string `json:"name"`
		MemoryBytes *int64 `json:"memoryBytes,omitempty"`
	} `json:"gpu,omitempty"`
}

// ParseInventory validates the script's JSON against the embedded schema
// and decodes it. Schema mismatch fails here, cleanly, instead of half way
// through rendering.
func ParseInventory(b []byte) (InventoryReport, error) {
	expr, err := cuejson.Extract("inventory.json", b)
	if err != nil {
		return InventoryReport{}, err
	}
	value := invCtx.BuildExpr(expr)

	unified := invSchema.Unify(value)
	if err := unified.Validate(
		cue.All(),
		cue.Concrete(true),
	); err != nil {
		return InventoryReport{}, err
	}

	var out InventoryReport
	if err := unified.Decode(&out); err != nil {
		return InventoryReport{}, err
	}
	return out, nil
}

// Render formats the report as an aligned, sectioned summary. Absent
// optional sections are left out entirely.
func (r InventoryReport) Render() string {
	var sb strings.Builder

	section := func(name string) {
		sb.WriteString(name)
		sb.WriteString("\n")
	}
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&sb, "  %-14s %s\n", label, value)
	}

	section("Operating system")
	row("Caption", r.OS.Caption)
	row("Version", r.OS.Version)
	row("Build", r.OS.Build)

	section("Processor")
	row("Name", r.CPU.Name)
	row("Manufacturer", r.CPU.Manufacturer)
	if r.CPU.ClockMHz > 0 {
		row("Clock", fmt.Sprintf("%.0f MHz", r.CPU.ClockMHz))
	}
	if r.CPU.Cores > 0 {
		row("Cores", fmt.Sprintf("%d (%d logical)", r.CPU.Cores, r.CPU.Logical))
	}

	if r.GPU != nil {
		section("Graphics")
		row("Name", r.GPU.Name)
		if r.GPU.MemoryBytes != nil && *r.GPU.MemoryBytes > 0 {
			row("Memory", humanBytes(uint64(*r.GPU.MemoryBytes)))
		}
	}

	section("Memory")
	row("Physical", humanBytes(r.MemoryBytes))

	if r.Board != nil {
		section("Motherboard")
		row("Manufacturer", r.Board.Manufacturer)
		row("Model", r.Board.Product)
	}

	return sb.String()
}

func humanBytes(n uint64) string {
	const gib = 1 << 30
	const mib = 1 << 20
	switch {
	case n >= gib:
		return fmt.Sprintf("%.1f GiB", float64(n)/gib)
	case n >= mib:
		return fmt.Sprintf("%.0f MiB", float64(n)/mib)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
