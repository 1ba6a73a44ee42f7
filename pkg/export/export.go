package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/xuri/excelize/v2"
)

// RoomHeader is the column layout of the per-room listing
var RoomHeader = []string{"room", "floor", "kind", "twin", "housekeeper_id", "housekeeper_name"}

// StatsHeader is the column layout of the per-housekeeper summary
var StatsHeader = []string{
	"housekeeper_id", "name", "room_quota", "twin_quota", "has_bath",
	"normal_rooms", "eco_rooms", "floors", "twin_count", "eco_count", "finish_time",
}

// roomRows flattens a result into one row per room, ascending by room number
func roomRows(rooms []models.Room, resp *models.AllocationResponse) [][]string {
	names := make(map[int]string, len(resp.Housekeepers))
	for _, s := range resp.Housekeepers {
		names[s.ID] = s.Name
	}
	sorted := slices.Clone(rooms)
	slices.SortFunc(sorted, func(a, b models.Room) int { return a.Number - b.Number })

	rows := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		id := resp.Assignments[r.Number]
		hk := ""
		if id != 0 {
			hk = strconv.Itoa(id)
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Number),
			strconv.Itoa(r.Floor()),
			string(r.Kind()),
			strconv.FormatBool(r.Twin),
			hk,
			names[id],
		})
	}
	return rows
}

func statsRows(resp *models.AllocationResponse) [][]string {
	rows := make([][]string, 0, len(resp.Housekeepers))
	for _, s := range resp.Housekeepers {
		rows = append(rows, []string{
			strconv.Itoa(s.ID),
			s.Name,
			strconv.Itoa(s.RoomQuota),
			strconv.Itoa(s.TwinQuota),
			strconv.FormatBool(s.HasBath),
			joinInts(s.NormalRooms),
			joinInts(s.EcoRooms),
			joinInts(s.Floors),
			strconv.Itoa(s.TwinCount),
			strconv.Itoa(s.EcoCount),
			fmt.Sprintf("%.0f", s.FinishTime),
		})
	}
	return rows
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, "|")
}

// WriteCSV writes one line per room with its housekeeper
func WriteCSV(w io.Writer, rooms []models.Room, resp *models.AllocationResponse) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(RoomHeader); err != nil {
		return err
	}
	if err := writer.WriteAll(roomRows(rooms, resp)); err != nil {
		return fmt.Errorf("write allocation csv: %w", err)
	}
	return nil
}

// WriteStatsCSV writes one line per housekeeper
func WriteStatsCSV(w io.Writer, resp *models.AllocationResponse) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(StatsHeader); err != nil {
		return err
	}
	if err := writer.WriteAll(statsRows(resp)); err != nil {
		return fmt.Errorf("write stats csv: %w", err)
	}
	return nil
}

const (
	// AllocationSheet lists every room
	AllocationSheet = "Allocation"
	// HousekeeperSheet summarises each housekeeper
	HousekeeperSheet = "Housekeepers"
)

// WriteXLSX renders the result as a workbook with an allocation sheet and a
// housekeeper sheet.
func WriteXLSX(w io.Writer, rooms []models.Room, resp *models.AllocationResponse) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", AllocationSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(HousekeeperSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSheet(f, AllocationSheet, RoomHeader, roomRows(rooms, resp), headerStyle); err != nil {
		return err
	}
	if err := writeSheet(f, HousekeeperSheet, StatsHeader, statsRows(resp), headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(HousekeeperSheet, "F", "G", 40); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string, headerStyle int) error {
	for col, h := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, row := range rows {
		for col, v := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to convert coordinates: %w", err)
			}
			// numbers stay numeric so the sheet can be sorted and summed
			var value any = v
			if n, err := strconv.Atoi(v); err == nil {
				value = n
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to set cell value at row %d, col %d: %w", i+2, col+1, err)
			}
		}
	}
	return nil
}
