// Command dumpbars converts daily bar CSV files into the packed binary
// archive format read by the backtester. Input rows are
// day,open,high,low,close,volume with a header line, sorted by day.
package main

import (
	"encoding/binary"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/linqiao-quant/ashare/pkg/datasource/historical"
)

func parseRow(record []string) (historical.BinaryBar, error) {
	var bar historical.BinaryBar

	if len(record) < 6 {
		return bar, fmt.Errorf("expected 6 columns, got %d", len(record))
	}

	day, err := time.Parse(time.DateOnly, record[0])
	if err != nil {
		return bar, fmt.Errorf("bad day %q: %w", record[0], err)
	}
	bar.Day = day.UTC().UnixNano()

	fields := []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume}
	for i, dst := range fields {
		v, err := strconv.ParseFloat(record[i+1], 64)
		if err != nil {
			return bar, fmt.Errorf("bad value %q in column %d: %w", record[i+1], i+1, err)
		}
		*dst = v
	}

	return bar, nil
}

func dumpIt(csvPath string, binFile *os.File) error {
	csvFile, err := os.Open(csvPath)
	if err != nil {
		return err
	}
	defer func(csvFile *os.File) {
		_ = csvFile.Close()
	}(csvFile)

	reader := csv.NewReader(csvFile)

	// Skip header
	if _, err := reader.Read(); err != nil {
		return err
	}

	lastDay := int64(0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		bar, err := parseRow(record)
		if err != nil {
			return err
		}
		if bar.Day <= lastDay {
			return fmt.Errorf("days must be strictly ascending, got %s twice or out of order", record[0])
		}
		lastDay = bar.Day

		if err := binary.Write(binFile, binary.LittleEndian, bar); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	csvPath := flag.String("csv", "", "daily bar csv file")
	outPath := flag.String("out", "", "output archive path")
	flag.Parse()

	if *csvPath == "" || *outPath == "" {
		slog.Error("both -csv and -out are required")
		os.Exit(1)
	}

	binFile, err := os.Create(*outPath)
	if err != nil {
		slog.Error("unable to create archive", "error", err)
		os.Exit(1)
	}
	defer func(binFile *os.File) {
		_ = binFile.Close()
	}(binFile)

	if err := dumpIt(*csvPath, binFile); err != nil {
		_ = os.Remove(*outPath)
		slog.Error("failed to dump", "error", err)
		os.Exit(1)
	}
	slog.Info("done", "csv", *csvPath, "archive", *outPath)
}
