package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"
)

var ledgerHeader = []string{
	"index",
	"timestamp",
	"datetime",
	"open",
	"high",
	"low",
	"close",
	"volume",
	"signal",
	"position",
	"action",
	"return",
	"fee",
	"net_return",
	"equity",
}

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteLedger(f, ledger); err != nil {
		return err
	}
	return f.Close()
}

// WriteLedger writes the ledger as CSV with a header row.
func WriteLedger(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(ledgerHeader); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			strconv.FormatInt(r.Timestamp, 10),
			fmtTime(r.Time),
			fmtFloat(r.Open),
			fmtFloat(r.High),
			fmtFloat(r.Low),
			fmtFloat(r.Close),
			fmtFloat(r.Volume),
			strconv.Itoa(int(r.Signal)),
			strconv.Itoa(int(r.Position)),
			string(r.Action),
			fmtFloat(r.Return),
			fmtFloat(r.Fee),
			fmtFloat(r.NetReturn),
			fmtFloat(r.Equity),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
