// Package packetfile persists the latest packet for the downstream
// transmitter. The write is atomic for any concurrent reader: the packet is
// written in full to a sibling temp file and renamed over the final path, so
// a reader sees either the previous packet or the new one, never a partial.
package packetfile

import (
	"fmt"
	"os"
)

const tmpSuffix = ".tmp"

type Writer struct {
	path    string
	tmpPath string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path, tmpPath: path + tmpSuffix}
}

// Write replaces the published packet. Errors are returned to the caller;
// the next observation's write is independent and is not a retry of this
// one.
func (w *Writer) Write(packet string) error {
	if err := os.WriteFile(w.tmpPath, []byte(packet), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", w.tmpPath, err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", w.tmpPath, w.path, err)
	}
	return nil
}
