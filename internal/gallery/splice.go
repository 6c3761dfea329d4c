package gallery

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/shashin/internal/storage"
)

// DefaultMarker starts the template line replaced by the fragment.
const DefaultMarker = "INSERT"

// Splice writes templatePath to targetPath with every line starting with DefaultMarker
// replaced by fragment. It returns the number of replaced lines.
func Splice(templatePath, targetPath, fragment string) (int, error) {
	return SpliceMarker(templatePath, targetPath, DefaultMarker, fragment)
}

// SpliceMarker is Splice with a custom marker.
func SpliceMarker(templatePath, targetPath, marker, fragment string) (int, error) {
	if marker == "" {
		return 0, fmt.Errorf("empty splice marker")
	}
	f, err := os.Open(templatePath)
	if err != nil {
		return 0, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()

	var replaced int
	err = storage.WriteFileAtomic(targetPath, func(w io.Writer) error {
		n, err := SpliceStream(f, w, marker, fragment)
		replaced = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("splice %s: %w", targetPath, err)
	}
	return replaced, nil
}

// SpliceStream copies r to w line by line, replacing marker lines with fragment plus a newline.
// Other lines, including their line endings, pass through unchanged.
func SpliceStream(r io.Reader, w io.Writer, marker, fragment string) (int, error) {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	replaced := 0
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			out := line
			if strings.HasPrefix(line, marker) {
				out = fragment + "\n"
				replaced++
			}
			if _, werr := bw.WriteString(out); werr != nil {
				return replaced, werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return replaced, err
		}
	}
	return replaced, bw.Flush()
}
