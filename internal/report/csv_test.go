package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/m3rciful/eventbot/internal/domain"
)

func TestCSV(t *testing.T) {
	at := time.Date(2025, 11, 3, 9, 5, 0, 0, time.Local)
	data, err := CSV([]domain.Registration{
		{ID: 1, Name: "Anna", Age: 25, Phone: "+79991234567", CreatedAt: at},
		{ID: 2, Name: `Иван "Ваня", мл.`, Age: 40, Phone: "+79990000000", CreatedAt: at},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, utf8BOM) {
		t.Fatal("missing BOM")
	}
	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][0] != "Имя" || rows[0][3] != "Дата регистрации" {
		t.Errorf("header = %v", rows[0])
	}
	want := []string{"Anna", "25", "+79991234567", "03.11.2025 09:05"}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Errorf("row[%d] = %q, want %q", i, rows[1][i], want[i])
		}
	}
	if rows[2][0] != `Иван "Ваня", мл.` {
		t.Errorf("quoted name = %q", rows[2][0])
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(time.Date(2025, 1, 9, 23, 0, 0, 0, time.UTC)); got != "registrations_2025-01-09.csv" {
		t.Errorf("FileName = %q", got)
	}
}

func TestCSVNeutralisesFormulaNames(t *testing.T) {
	data, err := CSV([]domain.Registration{
		{ID: 1, Name: "=HYPERLINK(\"x\")", Age: 30, Phone: "+79991234567"},
		{ID: 2, Name: "@Anna", Age: 30, Phone: "+79991234567"},
		{ID: 3, Name: "Anna-Maria", Age: 30, Phone: "+79991234567"},
	})
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"'=HYPERLINK(\"x\")", "'@Anna", "Anna-Maria"} {
		if rows[i+1][0] != want {
			t.Errorf("name %d = %q, want %q", i, rows[i+1][0], want)
		}
	}
	if rows[1][2] != "+79991234567" {
		t.Errorf("phone = %q", rows[1][2])
	}
}
