package engine

import (
	"path/filepath"

	"github.com/joe/file-modifier/pkg/filesystem"
)

type deleteFile struct {
	path string
}

func newDeleteFile(op *Operation) operator {
	return &deleteFile{path: op.target}
}

func (d *deleteFile) displayName() string {
	return "Deleting " + filepath.Base(d.path)
}

func (d *deleteFile) validate(op *Operation) error {
	_, err := op.lstat(d.path, "file")
	if err != nil {
		return err
	}

	return op.requireAccess(filepath.Dir(d.path), "parent folder", filesystem.AccessWrite)
}

func (d *deleteFile) gatherInput(op *Operation) {
	op.proceed()
}

func (d *deleteFile) execute(op *Operation) error {
	err := op.fileOps().Remove(d.path)
	if err != nil {
		op.recordError(err, d.path)
	}

	op.report(1, 1)

	return nil
}

// deleteFolder removes a directory tree, reporting progress per file removed.
type deleteFolder struct {
	path string
}

func newDeleteFolder(op *Operation) operator {
	return &deleteFolder{path: op.target}
}

func (d *deleteFolder) displayName() string {
	return "Deleting " + filepath.Base(d.path)
}

func (d *deleteFolder) validate(op *Operation) error {
	info, err := op.lstat(d.path, "folder")
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return invalid("%s is not a directory", d.path)
	}

	err = op.requireAccess(d.path, "folder", filesystem.AccessWrite)
	if err != nil {
		return err
	}

	return op.requireAccess(filepath.Dir(d.path), "parent folder", filesystem.AccessWrite)
}

func (d *deleteFolder) gatherInput(op *Operation) {
	op.proceed()
}

func (d *deleteFolder) execute(op *Operation) error {
	total, err := op.fileOps().CountFiles(d.path)
	if err != nil {
		return err
	}

	var deleted int64

	return op.fileOps().RemoveTree(d.path, func(path string, isDir bool, err error) {
		if err != nil {
			op.recordError(err, path)
		}

		if !isDir {
			deleted++
			op.report(deleted, int64(total))
		}
	}, op.cancelChan())
}
