// Package merge synchronizes a translator output directory into the persistent artifact store.
//
// Only files whose content differs are copied, so the store keeps the modification times of unchanged
// files and downstream compile steps are not triggered again.
package merge

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/geckorv/hdlbuild/internal/errors"
	"github.com/geckorv/hdlbuild/pkg/log"
	"github.com/geckorv/hdlbuild/util"
)

// LockFilename is created inside the store to serialize concurrent merges.
const LockFilename = ".hdlbuild.lock"

// Result lists the store-relative paths handled by a merge.
type Result struct {
	Copied    []string
	Unchanged []string
}

// Merge copies every regular file under source into dest unless dest already holds identical bytes.
// When stamp is not empty, the stamp file is touched after a successful merge.
func Merge(ctx context.Context, l log.Logger, source, dest, stamp string) (*Result, error) {
	if !util.IsDir(source) {
		return nil, errors.New(util.PathIsNotDirectory{Path: source})
	}

	if err := util.EnsureDirectory(dest); err != nil {
		return nil, err
	}

	lockfile := util.NewLockfile(filepath.Join(dest, LockFilename))
	if err := lockfile.Lock(ctx); err != nil {
		return nil, err
	}
	defer lockfile.Unlock() //nolint:errcheck

	result := &Result{}

	err := filepath.WalkDir(source, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return errors.New(err)
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		relPath, err := filepath.Rel(source, path)
		if err != nil {
			return errors.New(err)
		}

		target := filepath.Join(dest, relPath)

		equal, err := util.FilesEqual(path, target)
		if err != nil {
			return err
		}

		relPath = filepath.ToSlash(relPath)

		if equal {
			result.Unchanged = append(result.Unchanged, relPath)
			return nil
		}

		if err := util.CopyFile(path, target); err != nil {
			return err
		}

		l.Tracef("Copied %s to %s", path, target)

		result.Copied = append(result.Copied, relPath)

		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Debugf("Merged %s into %s: %d copied, %d unchanged", source, dest, len(result.Copied), len(result.Unchanged))

	if stamp != "" {
		if err := util.Touch(stamp); err != nil {
			return nil, err
		}
	}

	return result, nil
}
