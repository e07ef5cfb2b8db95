// Package report renders registrations as a spreadsheet-friendly CSV file.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/eventbot/core/telegram/helpers"
	"github.com/m3rciful/eventbot/internal/domain"
)

// MIME is the content type of the export.
const MIME = "text/csv"

// utf8BOM makes Excel detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var header = []string{"Имя", "Возраст", "Телефон", "Дата регистрации"}

// FileName returns the export name for the given day.
func FileName(now time.Time) string {
	return fmt.Sprintf("registrations_%s.csv", now.Format("2006-01-02"))
}

// safeCell keeps spreadsheets from evaluating free text as a formula.
func safeCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// CSV writes one row per registration in the given order after a header row.
func CSV(regs []domain.Registration) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range regs {
		row := []string{
			safeCell(r.Name),
			strconv.Itoa(r.Age),
			r.Phone,
			helpers.FormatTime(r.CreatedAt),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("report: write row %d: %w", r.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("report: flush: %w", err)
	}
	return buf.Bytes(), nil
}
