// Package catalog reads the master data that sits outside the engine: the
// room list of the day, the roster and the per-type cleaning times.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
)

// ErrFormat is wrapped by every parse error in this package
var ErrFormat = errors.New("malformed catalog file")

type table struct {
	cols map[string]int
	rows [][]string
	line func(i int) int
}

// readTable reads a CSV file with a header row; columns are looked up by name
func readTable(r io.Reader, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}
	t := &table{cols: make(map[string]int, len(header))}
	for i, h := range header {
		t.cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range required {
		if _, ok := t.cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrFormat, name)
		}
	}

	var lines []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormat, err)
		}
		if blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		t.rows = append(t.rows, record)
		lines = append(lines, line)
	}
	t.line = func(i int) int { return lines[i] }
	return t, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// get returns a trimmed field, or "" when the column is absent or short
func (t *table) get(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseRooms reads the room master: room,type[,clean]. type is S or T;
// clean is n (normal, the default), e (eco) or o (eco-out).
func ParseRooms(r io.Reader) ([]models.Room, error) {
	t, err := readTable(r, "room", "type")
	if err != nil {
		return nil, err
	}
	rooms := make([]models.Room, 0, len(t.rows))
	for i, row := range t.rows {
		number, err := strconv.Atoi(t.get(row, "room"))
		if err != nil || number <= 0 {
			return nil, fmt.Errorf("%w: line %d: bad room number %q", ErrFormat, t.line(i), t.get(row, "room"))
		}
		room := models.Room{Number: number}

		switch strings.ToUpper(t.get(row, "type")) {
		case "S":
		case "T":
			room.Twin = true
		default:
			return nil, fmt.Errorf("%w: line %d: room type %q is not S or T", ErrFormat, t.line(i), t.get(row, "type"))
		}

		switch strings.ToLower(t.get(row, "clean")) {
		case "", "n":
		case "e":
			room.Eco = true
		case "o":
			room.Eco = true
			room.EcoOut = true
		default:
			return nil, fmt.Errorf("%w: line %d: clean kind %q is not n, e or o", ErrFormat, t.line(i), t.get(row, "clean"))
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

// ParseRoster reads id,name,room_quota,twin_quota,has_bath. twin_quota may
// be empty, "auto" or negative for automatic resolution.
func ParseRoster(r io.Reader) ([]models.Housekeeper, error) {
	t, err := readTable(r, "id", "room_quota")
	if err != nil {
		return nil, err
	}
	out := make([]models.Housekeeper, 0, len(t.rows))
	for i, row := range t.rows {
		id, err := strconv.Atoi(t.get(row, "id"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad id %q", ErrFormat, t.line(i), t.get(row, "id"))
		}
		quota, err := strconv.Atoi(t.get(row, "room_quota"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad room_quota %q", ErrFormat, t.line(i), t.get(row, "room_quota"))
		}
		twin, err := models.ParseTwinQuota(t.get(row, "twin_quota"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, t.line(i), err)
		}
		bath, err := parseFlag(t.get(row, "has_bath"))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: has_bath: %v", ErrFormat, t.line(i), err)
		}
		out = append(out, models.Housekeeper{
			ID:        id,
			Name:      t.get(row, "name"),
			RoomQuota: quota,
			TwinQuota: twin,
			HasBath:   bath,
		})
	}
	return out, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y":
		return true, nil
	}
	return false, fmt.Errorf("%q is not a yes/no value", s)
}

// ParseDurations reads type,minutes. Types are single (S), twin (T), eco
// and bath; types not listed keep the default times.
func ParseDurations(r io.Reader) (models.Durations, error) {
	d := models.DefaultDurations()
	t, err := readTable(r, "type", "minutes")
	if err != nil {
		return d, err
	}
	for i, row := range t.rows {
		minutes, err := strconv.ParseFloat(t.get(row, "minutes"), 64)
		if err != nil || minutes < 0 {
			return d, fmt.Errorf("%w: line %d: bad minutes %q", ErrFormat, t.line(i), t.get(row, "minutes"))
		}
		switch strings.ToLower(t.get(row, "type")) {
		case "single", "s":
			d.Single = minutes
		case "twin", "t":
			d.Twin = minutes
		case "eco", "e":
			d.Eco = minutes
		case "bath", "b":
			d.Bath = minutes
		default:
			return d, fmt.Errorf("%w: line %d: unknown room type %q", ErrFormat, t.line(i), t.get(row, "type"))
		}
	}
	return d, nil
}
