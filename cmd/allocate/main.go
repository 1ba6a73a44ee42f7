// Command allocate runs the room allocation for one shift from local files
// and prints the result, without the HTTP service.
//
//	allocate -in shift.yaml -format csv
//	allocate -rooms rooms.csv -roster roster.csv -format xlsx -out shift.xlsx
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arnavshah/housekeeping-api-go/internal/config"
	"github.com/arnavshah/housekeeping-api-go/internal/logger"
	"github.com/arnavshah/housekeeping-api-go/pkg/allocator"
	"github.com/arnavshah/housekeeping-api-go/pkg/catalog"
	"github.com/arnavshah/housekeeping-api-go/pkg/export"
	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type options struct {
	in, rooms, roster, durations string
	policyFile                   string
	format, out                  string
	seed                         int64
	attempts, workers            int
	timeout                      time.Duration
	relaxed                      bool
	logLevel                     string
}

func main() {
	var o options
	flag.StringVar(&o.in, "in", "", "shift file (YAML or JSON) with rooms, housekeepers and durations")
	flag.StringVar(&o.rooms, "rooms", "", "rooms CSV (room,type[,clean]); used with -roster instead of -in")
	flag.StringVar(&o.roster, "roster", "", "roster CSV (id,name,room_quota,twin_quota,has_bath)")
	flag.StringVar(&o.durations, "durations", "", "optional durations CSV (type,minutes)")
	flag.StringVar(&o.policyFile, "policy", "", "YAML policy file overriding the default tolerances")
	flag.StringVar(&o.format, "format", "json", "output format: json, csv, stats or xlsx")
	flag.StringVar(&o.out, "out", "", "output file (defaults to stdout; required for xlsx)")
	flag.Int64Var(&o.seed, "seed", 0, "base seed for the search")
	flag.IntVar(&o.attempts, "attempts", allocator.DefaultAttempts, "number of strategies to try")
	flag.IntVar(&o.workers, "workers", 0, "concurrent attempts (0 = GOMAXPROCS)")
	flag.DurationVar(&o.timeout, "timeout", 30*time.Second, "search time budget")
	flag.BoolVar(&o.relaxed, "relaxed", false, "bend hard rules instead of failing, and report each relaxation")
	flag.StringVar(&o.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	if err := run(context.Background(), o, os.Stdout); err != nil {
		die("%v", err)
	}
}

func run(ctx context.Context, o options, stdout io.Writer) error {
	log := logger.Must(o.logLevel, "console", "allocate")
	defer func() { _ = log.Sync() }()

	input, err := loadInput(o)
	if err != nil {
		return err
	}
	input.ApplyDefaults()
	if err := models.Validate(input); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	policy, err := config.LoadPolicy(o.policyFile)
	if err != nil {
		return err
	}
	if o.relaxed {
		policy.Strict = false
	}

	p, err := allocator.NewProblem(input)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	al := allocator.NewAllocator(p, policy, allocator.WithLogger(log.With(zap.String("run_id", runID))))
	res, err := al.Search(ctx, allocator.SearchOptions{
		Attempts: o.attempts,
		Seed:     o.seed,
		Timeout:  o.timeout,
		Workers:  o.workers,
	})
	if err != nil {
		return err
	}
	resp := al.Report(res)
	resp.RunID = runID

	for _, rel := range resp.Relaxations {
		log.Warn("rule relaxed", zap.String("rule", rel.Rule), zap.Int("room", rel.Room), zap.Int("housekeeper", rel.Housekeeper), zap.String("detail", rel.Detail))
	}

	if o.format == "xlsx" && o.out == "" {
		return errors.New("-format xlsx needs -out")
	}
	w := stdout
	if o.out != "" {
		f, err := os.Create(o.out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return write(w, o.format, input, &resp)
}

func loadInput(o options) (*models.AllocationInput, error) {
	switch {
	case o.in != "" && (o.rooms != "" || o.roster != ""):
		return nil, errors.New("use either -in or -rooms/-roster, not both")
	case o.in != "":
		return readShift(o.in)
	case o.rooms != "" && o.roster != "":
		input := &models.AllocationInput{}
		var err error
		if input.Rooms, err = readCSV(o.rooms, catalog.ParseRooms); err != nil {
			return nil, err
		}
		if input.Housekeepers, err = readCSV(o.roster, catalog.ParseRoster); err != nil {
			return nil, err
		}
		if o.durations != "" {
			if input.Durations, err = readCSV(o.durations, catalog.ParseDurations); err != nil {
				return nil, err
			}
		}
		return input, nil
	}
	return nil, errors.New("-in, or both -rooms and -roster, are required")
}

// readShift decodes a YAML or JSON shift file by its extension
func readShift(path string) (*models.AllocationInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	input := &models.AllocationInput{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, input)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, input)
	default:
		return nil, fmt.Errorf("%s: expected a .yaml, .yml or .json file", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return input, nil
}

func readCSV[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

func write(w io.Writer, format string, input *models.AllocationInput, resp *models.AllocationResponse) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case "csv":
		return export.WriteCSV(w, input.Rooms, resp)
	case "stats":
		return export.WriteStatsCSV(w, resp)
	case "xlsx":
		return export.WriteXLSX(w, input.Rooms, resp)
	}
	return fmt.Errorf("unknown format %q", format)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
