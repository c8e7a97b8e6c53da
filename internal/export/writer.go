package export

import (
	"fmt"
	"os"
	"path/filepath"

	"discofetch/internal/domain"
)

// Writer places rendered exports under a root directory, one subdirectory per
// channel, refusing to clobber existing files.
type Writer struct {
	root string
}

func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Write renders the batch and writes it to
// <root>/<safe>/<safe>_<YYYYMMDD>_<HHMMSS>.<ext>, returning the final path.
// When that path already exists, a numeric suffix (_2, _3, ...) is inserted
// before the extension so an export never overwrites an earlier one.
func (w *Writer) Write(batch domain.ExportBatch, format Format) (string, error) {
	content, err := Render(batch, format)
	if err != nil {
		return "", err
	}

	safe := Sanitize(batch.Channel.Label())
	dir := filepath.Join(w.root, safe)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory %s: %w", dir, err)
	}

	base := fmt.Sprintf("%s_%s", safe, batch.ExportedAt.Format("20060102_150405"))

	for attempt := 1; ; attempt++ {
		name := base
		if attempt > 1 {
			name = fmt.Sprintf("%s_%d", base, attempt)
		}
		path := filepath.Join(dir, name+"."+format.Ext())

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create export file %s: %w", path, err)
		}

		_, werr := f.Write(content)
		cerr := f.Close()
		if werr != nil {
			return "", fmt.Errorf("write export file %s: %w", path, werr)
		}
		if cerr != nil {
			return "", fmt.Errorf("close export file %s: %w", path, cerr)
		}
		return path, nil
	}
}
