package render

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/materialcheck/internal/fetch"
	"github.com/dshills/materialcheck/internal/schema"
)

// Manifest describes the contents of an export archive, including any
// file that could not be fetched.
type Manifest struct {
	ExportID   string         `json:"export_id"`
	ProjectID  string         `json:"project_id"`
	ExportedAt time.Time      `json:"exported_at"`
	Documents  []string       `json:"documents"`
	Files      []ManifestFile `json:"files"`
	Warnings   []string       `json:"warnings"`
}

// ManifestFile is one bundled file.
type ManifestFile struct {
	ID   string `json:"id"`
	Path string `json:"path"`
	Size int    `json:"size"`
}

// documentFormats are written to every archive, in order.
var documentFormats = []string{"json", "md", "html"}

type fetched struct {
	body []byte
	err  error
}

// WriteArchive writes a zip containing the three document formats, every
// referenced file under files/, and manifest.json. Files are fetched
// concurrently with at most limit in flight; one failed fetch is recorded
// as a manifest warning and does not stop the others. The archive is only
// written once all fetches settle, so a cancelled ctx leaves w untouched.
func WriteArchive(ctx context.Context, w io.Writer, data *schema.ExportData, f fetch.Fetcher, limit int) (*Manifest, error) {
	results := make([]fetched, len(data.Files))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, rec := range data.Files {
		g.Go(func() error {
			results[i] = fetchOne(ctx, f, rec.URL)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &Manifest{
		ExportID:   uuid.New().String(),
		ProjectID:  data.Project.ID,
		ExportedAt: data.ExportedAt,
		Documents:  []string{},
		Files:      []ManifestFile{},
		Warnings:   []string{},
	}
	zw := zip.NewWriter(w)

	for _, format := range documentFormats {
		r, err := NewRenderer(format)
		if err != nil {
			return nil, err
		}
		body, err := r.Render(data)
		if err != nil {
			return nil, err
		}
		name := "project." + r.Ext()
		if err := writeEntry(zw, name, body, data.ExportedAt); err != nil {
			return nil, err
		}
		m.Documents = append(m.Documents, name)
	}

	for i, rec := range data.Files {
		res := results[i]
		if res.err != nil {
			m.Warnings = append(m.Warnings, fmt.Sprintf("file %s (%s) not included: %v", rec.ID, rec.URL, res.err))
			continue
		}
		name := "files/" + entryName(rec)
		if err := writeEntry(zw, name, res.body, rec.UploadedAt); err != nil {
			return nil, err
		}
		m.Files = append(m.Files, ManifestFile{ID: rec.ID, Path: name, Size: len(res.body)})
	}

	manifest, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := writeEntry(zw, "manifest.json", manifest, data.ExportedAt); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return m, nil
}

func fetchOne(ctx context.Context, f fetch.Fetcher, url string) fetched {
	if f == nil {
		return fetched{err: fmt.Errorf("no file source configured")}
	}
	rc, err := f.Fetch(ctx, url)
	if err != nil {
		return fetched{err: err}
	}
	defer rc.Close()
	body, err := io.ReadAll(rc)
	return fetched{body: body, err: err}
}

func writeEntry(zw *zip.Writer, name string, body []byte, mod time.Time) error {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: mod}
	ew, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := ew.Write(body); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// entryName prefixes the file ID so two uploads with the same name cannot collide.
func entryName(rec schema.FileRecord) string {
	name := rec.FileName
	if name == "" {
		name = fetch.FileName(rec.URL)
	}
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	return rec.ID + "-" + name
}
