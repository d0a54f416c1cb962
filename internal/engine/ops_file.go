package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joe/file-modifier/pkg/fileops"
	"github.com/joe/file-modifier/pkg/filesystem"
)

// fileTransfer moves or copies a single file into a destination folder.
type fileTransfer struct {
	move      bool
	src       string
	destDir   string
	name      string
	confirmed bool
}

func newMoveFile(op *Operation) operator { return newFileTransfer(op, true) }

func newCopyFile(op *Operation) operator { return newFileTransfer(op, false) }

func newFileTransfer(op *Operation, move bool) *fileTransfer {
	name := strings.TrimSpace(op.args.Get(ParamNewName))
	if name == "" {
		name = filepath.Base(op.target)
	}

	return &fileTransfer{
		move:    move,
		src:     op.target,
		destDir: op.args.Get(ParamDestinationDirectory),
		name:    name,
	}
}

func (t *fileTransfer) displayName() string {
	if t.move {
		return "Moving " + filepath.Base(t.src)
	}

	return "Copying " + filepath.Base(t.src)
}

func (t *fileTransfer) validate(op *Operation) error {
	info, err := op.lstat(t.src, "source")
	if err != nil {
		return err
	}

	if info.IsDir() {
		return invalid("source %s is a directory", t.src)
	}

	if info.Mode().IsRegular() {
		err = op.requireAccess(t.src, "source", filesystem.AccessRead)
		if err != nil {
			return err
		}
	}

	if t.move {
		err = op.requireAccess(filepath.Dir(t.src), "source folder", filesystem.AccessWrite)
		if err != nil {
			return err
		}
	}

	return op.requireWritableFolder(t.destDir, "destination folder")
}

func (t *fileTransfer) gatherInput(op *Operation) {
	if !fileops.IsValidFileName(t.name) {
		op.ask(PromptTextOrCancel, fmt.Sprintf("%q is not a valid file name. New name:", t.name), 0, false,
			func(answer Answer) {
				if answer.Cancelled {
					op.cancel()
					return
				}

				t.name = strings.TrimSpace(answer.Text)
				t.gatherInput(op)
			})

		return
	}

	dst, err := t.destination(op)
	if err != nil {
		op.reject(err)
		return
	}

	exists, err := op.fileOps().Exists(dst)
	if err != nil {
		op.reject(err)
		return
	}

	if !exists || t.confirmed {
		op.proceed()
		return
	}

	op.ask(PromptYesNo, fmt.Sprintf("%s already exists in %s. Overwrite?", t.name, t.destDir), 1, false,
		func(answer Answer) {
			if answer.Cancelled || !answer.Yes {
				op.cancel()
				return
			}

			t.confirmed = true
			op.proceed()
		})
}

// destination returns the path the file ends up at, refusing targets that
// would clobber the source or a directory.
func (t *fileTransfer) destination(op *Operation) (string, error) {
	dst := op.fs().Join(t.destDir, t.name)

	if dst == op.fs().Join(t.src) {
		return "", invalid("%s is already in %s", t.name, t.destDir)
	}

	info, err := op.fs().Lstat(dst)
	if err == nil && info.IsDir() {
		return "", invalid("destination %s is a directory", dst)
	}

	return dst, nil
}

func (t *fileTransfer) execute(op *Operation) error {
	dst, err := t.destination(op)
	if err != nil {
		op.recordError(err, t.src)
		return nil
	}

	progress := func(done, total int64, _ string) {
		op.report(done, total)
	}

	if t.move {
		err = op.fileOps().MoveFile(t.src, dst, progress, op.cancelChan())
	} else {
		_, err = op.fileOps().CopyFile(t.src, dst, progress, op.cancelChan())
	}

	if errors.Is(err, fileops.ErrCancelled) {
		return err
	}

	if err != nil {
		op.recordError(err, t.src)
	}

	return nil
}
