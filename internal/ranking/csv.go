package ranking

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVHeader is the header row of a ranking export.
var CSVHeader = []string{"Contestant Name", "Weighted Average"}

// WriteCSV writes results in the given order.
func WriteCSV(w io.Writer, results []Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return err
	}

	for _, r := range results {
		if err := writer.Write([]string{r.ContestantName, strconv.FormatFloat(r.WeightedScore, 'f', -1, 64)}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
