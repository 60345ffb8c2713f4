package catalog

import (
	"bytes"
	"fmt"
	"io"

	"marketsync/errors"

	"github.com/gabriel-vasile/mimetype"
)

const sniffLength = 512

// sniff checks that r holds text, so that a spreadsheet or an image picked by
// mistake is refused before parsing. The returned reader replays the sniffed bytes.
func sniff(r io.Reader) (io.Reader, string, error) {
	buf := make([]byte, sniffLength)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", err
	}
	buf = buf[:n]
	replay := io.MultiReader(bytes.NewReader(buf), r)
	if n == 0 {
		return replay, "", nil
	}

	detected := mimetype.Detect(buf)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return replay, detected.String(), nil
		}
	}
	return nil, detected.String(), fmt.Errorf("%w: %s", errors.ErrUnsupportedFile, detected.String())
}
