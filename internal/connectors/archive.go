package connectors

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"nychealth/internal"
)

// DocumentArchive keeps a copy of every downloaded report so runs can be
// replayed offline with the local fetcher.
type DocumentArchive struct {
	dir string
}

type ArchivedDocument struct {
	Path string
	Hash string
}

func NewDocumentArchive(dir string) *DocumentArchive {
	return &DocumentArchive{dir: dir}
}

func (a *DocumentArchive) Store(report internal.ReportType, date time.Time, ext string, body []byte) (ArchivedDocument, error) {
	hashBytes := sha256.Sum256(body)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return ArchivedDocument{}, err
	}

	path := filepath.Join(a.dir, DocumentName(report, date, ext))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return ArchivedDocument{}, err
	}
	return ArchivedDocument{Path: path, Hash: hash}, nil
}
