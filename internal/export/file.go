package export

import (
	"fmt"
	"image"
	"os"
)

// WriteFile encodes img to path. An empty format is taken from the file
// extension.
func WriteFile(path string, img image.Image, f Format, opts Options) (err error) {
	if f == "" {
		if f, err = FormatFromPath(path); err != nil {
			return err
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := Encode(out, img, f, opts); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}
