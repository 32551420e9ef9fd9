// Package extract reads report documents into raw tables. PDF reports are
// laid out from positioned text runs; HTML, XLSX and CSV renditions are read
// cell by cell.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nychealth/internal"
)

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindHTML Kind = "html"
	KindXLSX Kind = "xlsx"
	KindCSV  Kind = "csv"
)

// Kinds lists the supported document kinds in lookup order.
var Kinds = []Kind{KindPDF, KindHTML, KindXLSX, KindCSV}

func KindFromPath(path string) (Kind, bool) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "pdf":
		return KindPDF, true
	case "html", "htm":
		return KindHTML, true
	case "xlsx":
		return KindXLSX, true
	case "csv":
		return KindCSV, true
	default:
		return "", false
	}
}

func FromFile(path string) (internal.RawTable, error) {
	kind, ok := KindFromPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported document type: %s", path)
	}
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(kind, blob)
}

func FromBytes(kind Kind, blob []byte) (internal.RawTable, error) {
	switch kind {
	case KindPDF:
		return parsePDF(blob)
	case KindHTML:
		return parseHTML(blob)
	case KindXLSX:
		return parseXLSX(blob)
	case KindCSV:
		return parseCSV(blob)
	default:
		return nil, fmt.Errorf("unsupported document kind: %s", kind)
	}
}
