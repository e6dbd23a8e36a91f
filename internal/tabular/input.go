// Package tabular reads the project input table and writes the valuation
// output table.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joelkehle/bidvalue/internal/batch"
	"github.com/joelkehle/bidvalue/internal/valuation"
)

// InputColumns are the required input headers. Order in the file is free.
var InputColumns = []string{
	"project_id",
	"contract_amount",
	"infra_type",
	"design_phase",
	"contract_duration",
	"procurement_type",
	"client_type",
	"firm_size",
	"bim_years",
	"same_type_count",
	"current_utilization",
}

// ReadProjects decodes a CSV input table. Structural problems (missing
// header, missing columns) fail the whole read; a malformed cell fails only
// its row, which comes back as an Item with Err set.
func ReadProjects(r io.Reader) ([]batch.Item, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("tabular: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("tabular: read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}
	var missing []string
	for _, c := range InputColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("tabular: missing columns: %s", strings.Join(missing, ", "))
	}

	var items []batch.Item
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				items = append(items, batch.Item{Line: perr.StartLine, Err: fmt.Errorf("line %d: %w", perr.StartLine, err)})
				continue
			}
			return nil, fmt.Errorf("tabular: read: %w", err)
		}
		if blank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)
		in, err := decodeRow(rec, index)
		if err != nil {
			err = fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, batch.Item{Line: line, Input: in, Err: err})
	}
	return items, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

type rowDecoder struct {
	rec   []string
	index map[string]int
	err   error
}

func (d *rowDecoder) cell(col string) string {
	i := d.index[col]
	if i >= len(d.rec) {
		return ""
	}
	return strings.TrimSpace(d.rec[i])
}

func (d *rowDecoder) number(col string) float64 {
	if d.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(d.cell(col), 64)
	if err != nil {
		d.err = &valuation.ValidationError{Field: col, Value: strconv.Quote(d.cell(col)), Reason: "not a number"}
	}
	return v
}

func (d *rowDecoder) integer(col string) int {
	if d.err != nil {
		return 0
	}
	s := d.cell(col)
	v, err := strconv.Atoi(s)
	if err != nil {
		// Spreadsheets export whole numbers as "6.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			d.err = &valuation.ValidationError{Field: col, Value: strconv.Quote(s), Reason: "not an integer"}
			return 0
		}
		v = int(f)
	}
	return v
}

func parseEnum[T any](d *rowDecoder, col string, parse func(string) (T, error)) T {
	var zero T
	if d.err != nil {
		return zero
	}
	v, err := parse(d.cell(col))
	if err != nil {
		d.err = err
	}
	return v
}

func decodeRow(rec []string, index map[string]int) (valuation.Tier0Input, error) {
	d := &rowDecoder{rec: rec, index: index}
	in := valuation.Tier0Input{ProjectID: d.cell("project_id")}
	in.ContractAmount = d.number("contract_amount")
	in.InfraType = parseEnum(d, "infra_type", valuation.ParseInfraType)
	in.DesignPhase = parseEnum(d, "design_phase", valuation.ParseDesignPhase)
	in.ContractDuration = d.number("contract_duration")
	in.ProcurementType = parseEnum(d, "procurement_type", valuation.ParseProcurementType)
	in.ClientType = parseEnum(d, "client_type", valuation.ParseClientType)
	in.FirmSize = parseEnum(d, "firm_size", valuation.ParseFirmSize)
	in.BIMYears = d.integer("bim_years")
	in.SameTypeCount = d.integer("same_type_count")
	in.CurrentUtilization = d.number("current_utilization")
	return in, d.err
}
