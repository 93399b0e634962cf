package fs

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nuhsistemas/scankiosk/internal/domain"
)

// ErrEmptyHistory is returned when there is nothing to export.
var ErrEmptyHistory = errors.New("history is empty")

const (
	csvHeader     = "Data/Hora;Codigo;Liberado?;Mensagem"
	csvTimeLayout = "02/01/2006 15:04:05"
)

// WriteHistoryCSV writes entries as semicolon-separated rows. Semicolons
// inside values become commas and newlines become spaces so every entry
// stays on one line.
func WriteHistoryCSV(w io.Writer, entries []domain.HistoryEntry, loc *time.Location) error {
	if len(entries) == 0 {
		return ErrEmptyHistory
	}
	if loc == nil {
		loc = time.Local
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		granted := "Não"
		if e.Granted() {
			granted = "Sim"
		}
		row := strings.Join([]string{
			e.Scan.Timestamp.In(loc).Format(csvTimeLayout),
			csvField(e.Scan.Value),
			granted,
			csvField(e.Message()),
		}, ";")
		if _, err := bw.WriteString("\n" + row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ExportHistoryCSV writes the CSV to path atomically.
func ExportHistoryCSV(path string, entries []domain.HistoryEntry, loc *time.Location) error {
	if len(entries) == 0 {
		return ErrEmptyHistory
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := WriteHistoryCSV(f, entries, loc); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func csvField(s string) string {
	s = strings.ReplaceAll(s, ";", ",")
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
