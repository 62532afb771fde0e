package archive

import (
	"archive/zip"
	"io"
)

// openZipFile opens zipPath and returns a reader positioned at
// entryPath, for ZipSourceProvider.Fetch.
func openZipFile(zipPath, entryPath string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	for _, f := range r.File {
		if f.Name == entryPath {
			rc, err := f.Open()
			if err != nil {
				r.Close()
				return nil, err
			}
			return &zipEntryReadCloser{ReadCloser: rc, archive: r}, nil
		}
	}
	r.Close()
	return nil, errEntryNotFound
}

// zipEntryReadCloser closes both the entry and the archive it came
// from, so callers only need one Close.
type zipEntryReadCloser struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z *zipEntryReadCloser) Close() error {
	err := z.ReadCloser.Close()
	if cerr := z.archive.Close(); err == nil {
		err = cerr
	}
	return err
}
