package repo

import (
	"fmt"
	"io/fs"

	"github.com/KisukeMaybe/Git-Clone/pkg/object"
)

// treeModeFor maps lstat results to a tree entry mode. Every regular file
// is 100644 whatever its permission bits, so the tree address depends only
// on names and contents. Device files, sockets and named pipes are rejected
// rather than silently dropped.
func treeModeFor(path string, mode fs.FileMode) (string, error) {
	switch {
	case mode.IsDir():
		return object.TreeModeDir, nil
	case mode&fs.ModeSymlink != 0:
		return object.TreeModeSymlink, nil
	case mode.IsRegular():
		return object.TreeModeFile, nil
	default:
		return "", fmt.Errorf("%s: %w (%s)", path, ErrUnsupportedFile, mode.Type())
	}
}
