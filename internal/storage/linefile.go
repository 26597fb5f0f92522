package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"moneytracker/internal/core"
)

// Line file record layout, one record per line:
//
//	C|<kind>|<name>
//	T|<kind>|<amount>|<yyyy-mm-dd>|<category>|<description>
//
// Blank lines and lines starting with # are ignored. A literal | or \ in a
// value is escaped with a backslash.
const (
	recordCategory    = "C"
	recordTransaction = "T"
	fieldSeparator    = '|'
	escapeChar        = '\\'
)

var ErrMalformedLine = errors.New("malformed line")

// LineFile stores a snapshot as a human-readable text file.
type LineFile struct {
	path string
}

func NewLineFile(path string) *LineFile {
	return &LineFile{path: path}
}

func (f *LineFile) Path() string {
	return f.path
}

// Load parses the file. A missing file is an empty ledger.
func (f *LineFile) Load(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot

	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snap, nil
		}
		return snap, fmt.Errorf("open ledger file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := decodeLine(line, &snap); err != nil {
			return core.Snapshot{}, fmt.Errorf("%s:%d: %w", f.path, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return core.Snapshot{}, fmt.Errorf("read ledger file: %w", err)
	}

	slog.DebugContext(ctx, "Ledger loaded from file",
		"path", f.path,
		"categories", len(snap.Categories),
		"transactions", len(snap.Transactions))
	return snap, nil
}

// Save writes s to a temporary file in the same directory and renames it
// over the ledger file.
func (f *LineFile) Save(ctx context.Context, s core.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, c := range s.Categories {
		w.WriteString(encodeCategory(c))
		w.WriteByte('\n')
	}
	for _, t := range s.Transactions {
		w.WriteString(encodeTransaction(t))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write ledger file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close ledger file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}

	slog.DebugContext(ctx, "Ledger saved to file",
		"path", f.path,
		"categories", len(s.Categories),
		"transactions", len(s.Transactions))
	return nil
}

func encodeCategory(c core.Category) string {
	return joinFields(recordCategory, string(c.Kind), c.Name)
}

func encodeTransaction(t core.Transaction) string {
	return joinFields(recordTransaction, string(t.Kind), t.Amount.String(), t.Date.String(), t.Category, t.Description)
}

func decodeLine(line string, snap *core.Snapshot) error {
	fields, err := splitFields(line)
	if err != nil {
		return err
	}
	switch fields[0] {
	case recordCategory:
		if len(fields) != 3 {
			return fmt.Errorf("%w: category needs 3 fields, got %d", ErrMalformedLine, len(fields))
		}
		kind, err := core.ParseKind(fields[1])
		if err != nil {
			return err
		}
		c := core.Category{Kind: kind, Name: fields[2]}
		if err := c.Validate(); err != nil {
			return err
		}
		snap.Categories = append(snap.Categories, c)
	case recordTransaction:
		if len(fields) != 6 {
			return fmt.Errorf("%w: transaction needs 6 fields, got %d", ErrMalformedLine, len(fields))
		}
		kind, err := core.ParseKind(fields[1])
		if err != nil {
			return err
		}
		amount, err := core.ParseMoney(fields[2])
		if err != nil {
			return err
		}
		date, err := core.ParseDate(fields[3])
		if err != nil {
			return err
		}
		t := core.Transaction{
			Kind:        kind,
			Amount:      amount,
			Date:        date,
			Category:    fields[4],
			Description: fields[5],
		}
		if err := t.Validate(); err != nil {
			return err
		}
		snap.Transactions = append(snap.Transactions, t)
	default:
		return fmt.Errorf("%w: unknown record type %q", ErrMalformedLine, fields[0])
	}
	return nil
}

func joinFields(fields ...string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(fieldSeparator)
		}
		for _, r := range f {
			if r == fieldSeparator || r == escapeChar {
				b.WriteByte(escapeChar)
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func splitFields(line string) ([]string, error) {
	var (
		fields  []string
		cur     strings.Builder
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == escapeChar:
			escaped = true
		case r == fieldSeparator:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		return nil, fmt.Errorf("%w: dangling escape", ErrMalformedLine)
	}
	return append(fields, cur.String()), nil
}
