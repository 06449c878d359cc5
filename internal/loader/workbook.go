package loader

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/basestation-calc/internal/model"
)

// Sheet names read from a request workbook.
const (
	SheetStationTypes = "StationTypes"
	SheetHandovers    = "Handovers"
	SheetDistricts    = "Districts"
	SheetSettings     = "Settings"
)

// ReadWorkbook reads a request from an XLSX workbook. StationTypes and
// Districts are required; Handovers and Settings are optional. The first row
// of every sheet is a header.
func ReadWorkbook(path string) (model.CalculationRequest, error) {
	var req model.CalculationRequest

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return req, eris.Wrap(err, "loader: open workbook")
	}

	rows, err := sheetRows(f, SheetStationTypes, true)
	if err != nil {
		return req, err
	}
	for _, r := range rows {
		st := model.StationType{}
		if st.ID, err = r.id(0); err != nil {
			return req, err
		}
		if st.CoverageArea, err = r.number(1); err != nil {
			return req, err
		}
		if st.HandoverMin, err = r.optionalNumber(2); err != nil {
			return req, err
		}
		if st.HandoverMax, err = r.optionalNumber(3); err != nil {
			return req, err
		}
		req.StationTypes = append(req.StationTypes, st)
	}

	rows, err = sheetRows(f, SheetHandovers, false)
	if err != nil {
		return req, err
	}
	for _, r := range rows {
		h := model.HandoverEntry{}
		if h.StationTypeID, err = r.id(0); err != nil {
			return req, err
		}
		if h.Value, err = r.number(1); err != nil {
			return req, err
		}
		req.Handovers = append(req.Handovers, h)
	}

	rows, err = sheetRows(f, SheetDistricts, true)
	if err != nil {
		return req, err
	}
	for _, r := range rows {
		d := model.DistrictInput{ID: r.text(0)}
		if d.Area, err = r.number(1); err != nil {
			return req, err
		}
		if d.K, err = r.number(2); err != nil {
			return req, err
		}
		if d.Stations, err = r.ids(3); err != nil {
			return req, err
		}
		req.Districts = append(req.Districts, d)
	}

	rows, err = sheetRows(f, SheetSettings, false)
	if err != nil {
		return req, err
	}
	for _, r := range rows {
		if !strings.EqualFold(r.text(0), "pi") {
			continue
		}
		pi, err := r.number(1)
		if err != nil {
			return req, err
		}
		req.Pi = &pi
	}

	return req, nil
}

// row is one non-blank data row of a sheet with its 1-based row number.
type row struct {
	sheet string
	num   int
	cells []string
}

func sheetRows(f *xlsx.File, name string, required bool) ([]row, error) {
	sheet, ok := f.Sheet[name]
	if !ok {
		if required {
			return nil, eris.Errorf("loader: workbook has no %q sheet", name)
		}
		return nil, nil
	}

	var out []row
	for i, r := range sheet.Rows {
		if i == 0 || r == nil {
			continue
		}
		cells := rowToStrings(r)
		if blank(cells) {
			continue
		}
		out = append(out, row{sheet: name, num: i + 1, cells: cells})
	}
	return out, nil
}

func rowToStrings(r *xlsx.Row) []string {
	cells := make([]string, len(r.Cells))
	for j, cell := range r.Cells {
		cells[j] = strings.TrimSpace(cell.String())
	}
	return cells
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

func (r row) text(col int) string {
	if col >= len(r.cells) {
		return ""
	}
	return r.cells[col]
}

func (r row) cellErr(col int, format string, args ...any) error {
	return eris.Errorf("loader: sheet %s row %d column %d: "+format,
		append([]any{r.sheet, r.num, col + 1}, args...)...)
}

func (r row) number(col int) (float64, error) {
	s := r.text(col)
	if s == "" {
		return 0, r.cellErr(col, "value is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, r.cellErr(col, "%q is not a number", s)
	}
	return v, nil
}

func (r row) optionalNumber(col int) (float64, error) {
	if r.text(col) == "" {
		return 0, nil
	}
	return r.number(col)
}

func (r row) id(col int) (int, error) {
	return parseID(r, col, r.text(col))
}

// ids parses a list of ids separated by commas, semicolons or spaces.
func (r row) ids(col int) ([]int, error) {
	fields := strings.FieldsFunc(r.text(col), func(c rune) bool {
		return c == ',' || c == ';' || c == ' '
	})
	ids := make([]int, 0, len(fields))
	for _, s := range fields {
		id, err := parseID(r, col, s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseID accepts integral numbers, including the "3.0" spreadsheets emit for
// numeric cells.
func parseID(r row, col int, s string) (int, error) {
	if s == "" {
		return 0, r.cellErr(col, "value is required")
	}
	if id, err := strconv.Atoi(s); err == nil {
		return id, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
		return 0, r.cellErr(col, "%q is not an integer id", s)
	}
	return int(v), nil
}
