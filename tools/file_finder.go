package tools

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"

	"github.com/ecopia-map/scan_colorizer/internal/options"
)

type ScanFinder interface {
	GetScansToProcess(opts *options.Options) ([]string, error)
}

type StandardScanFinder struct{}

func NewStandardScanFinder() ScanFinder {
	return &StandardScanFinder{}
}

func (f *StandardScanFinder) GetScansToProcess(opts *options.Options) ([]string, error) {
	// If a scan list is given the scans come from it, otherwise every sub folder of the result set
	// holding a result file is a scan. Scans without a result file are skipped in both cases.
	var scans []string
	var err error
	if opts.ScanList != "" {
		scans, err = ReadScanList(opts.ScanList)
	} else {
		scans, err = f.getScansFromResultSetFolder(opts)
	}
	if err != nil {
		return nil, err
	}

	validScans := make([]string, 0, len(scans))
	for _, scan := range scans {
		if !Exists(opts.ResultPath(scan)) {
			glog.V(1).Infof("skipping scan %s: no %s", scan, options.ResultFileName)
			continue
		}
		validScans = append(validScans, scan)
	}
	return validScans, nil
}

func (f *StandardScanFinder) getScansFromResultSetFolder(opts *options.Options) ([]string, error) {
	entries, err := os.ReadDir(opts.ResultSetDir())
	if err != nil {
		return nil, err
	}

	scans := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			scans = append(scans, entry.Name())
		}
	}
	sort.Strings(scans)
	return scans, nil
}

// ReadScanList reads one scan id per line, surrounding blanks are trimmed and empty lines ignored
func ReadScanList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scans := make([]string, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		scan := strings.TrimSpace(scanner.Text())
		if scan == "" {
			continue
		}
		scans = append(scans, filepath.Base(scan))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return scans, nil
}
