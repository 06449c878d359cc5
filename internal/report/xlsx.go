package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/basestation-calc/internal/model"
)

// SheetResults is the sheet WriteXLSX writes.
const SheetResults = "Results"

// WriteXLSX saves resp as a workbook at path.
func WriteXLSX(path string, resp *model.CalculationResponse) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetResults)
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"districtId", "n", "handoverAvg", "handoverAdjusted"} {
		header.AddCell().SetString(h)
	}

	for _, r := range resp.DistrictResults {
		row := sheet.AddRow()
		row.AddCell().SetString(r.DistrictID)
		row.AddCell().SetFloatWithFormat(r.N, "0.00")
		row.AddCell().SetFloatWithFormat(r.HandoverAvg, "0.00")
		row.AddCell().SetBool(r.HandoverAdjusted)
	}

	total := sheet.AddRow()
	total.AddCell().SetString("TOTAL")
	total.AddCell().SetFloatWithFormat(resp.TotalN, "0.00")

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "report: save workbook")
	}
	return nil
}
