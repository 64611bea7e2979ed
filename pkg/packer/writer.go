package packer

import (
	"archive/zip"
	"io"
	"os"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
)

// Writer writes a zip archive to a temporary file next to its destination and moves it into place once
// the archive is complete. An aborted Writer leaves no file behind.
type Writer struct {
	dest   string
	tmp    string
	hdl    *os.File
	zip    *zip.Writer
	buffer []byte
}

// TempPath returns the name of a temporary file for dest
func TempPath(dest string) string {
	return dest + "." + nanoid.New() + ".tmp"
}

// NewWriter creates a new Writer instance and opens its temporary file for writing
func NewWriter(dest string) (*Writer, error) {
	tmp := TempPath(dest)
	hdl, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to create %s", tmp)
	}

	return &Writer{
		dest:   dest,
		tmp:    tmp,
		hdl:    hdl,
		zip:    zip.NewWriter(hdl),
		buffer: make([]byte, 32*1024),
	}, nil
}

// WriteFile streams reader into a new deflate entry
func (w *Writer) WriteFile(name string, info os.FileInfo, reader io.Reader) (int64, error) {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, eris.Wrapf(err, "failed to build header for %s", name)
	}
	header.Name = name
	header.Method = zip.Deflate

	entry, err := w.zip.CreateHeader(header)
	if err != nil {
		return 0, eris.Wrapf(err, "failed to create entry %s", name)
	}

	written, err := io.CopyBuffer(entry, reader, w.buffer)
	if err != nil {
		return written, eris.Wrapf(err, "failed to write entry %s", name)
	}

	return written, nil
}

// Close writes the central directory and renames the archive to its destination
func (w *Writer) Close() error {
	err := w.zip.Close()
	if err != nil {
		w.Abort()
		return eris.Wrap(err, "failed to finalize archive")
	}

	err = w.hdl.Close()
	if err != nil {
		os.Remove(w.tmp)
		return eris.Wrap(err, "failed to close archive")
	}

	err = os.Rename(w.tmp, w.dest)
	if err != nil {
		os.Remove(w.tmp)
		return eris.Wrapf(err, "failed to move archive to %s", w.dest)
	}

	return nil
}

// Abort discards everything written so far
func (w *Writer) Abort() {
	w.hdl.Close()
	os.Remove(w.tmp)
}
