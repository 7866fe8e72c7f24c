package meshio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/2x3systems/quadpattern/goquad"
)

// Binary mesh files use this extension; everything else is read as OBJ.
const BinaryExt = ".qmsh"

// Load reads a mesh file, choosing the format by extension.
func Load(pathname string) (*goquad.IndexedFaceSet, error) {
	if isBinary(pathname) {
		buf, err := os.ReadFile(pathname)
		if err != nil {
			return nil, err
		}
		ifs, err := Decode(buf)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", pathname)
		}
		return ifs, nil
	}

	file, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadOBJ(filepath.Base(pathname), file)
}

// Save writes a mesh file, choosing the format by extension.
func Save(pathname string, ifs *goquad.IndexedFaceSet) error {
	if isBinary(pathname) {
		buf, err := Encode(ifs)
		if err != nil {
			return err
		}
		return os.WriteFile(pathname, buf, 0644)
	}

	file, err := os.Create(pathname)
	if err != nil {
		return err
	}
	if err = WriteOBJ(file, ifs); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func isBinary(pathname string) bool {
	return strings.EqualFold(filepath.Ext(pathname), BinaryExt)
}
