package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joe/file-modifier/pkg/fileops"
	"github.com/joe/file-modifier/pkg/filesystem"
)

// folderTransfer moves or copies a directory tree to destDir/name, one file
// at a time. Conflicting destination files are settled with the user before
// anything is touched.
type folderTransfer struct {
	move    bool
	src     string
	destDir string
	name    string
	filter  *GlobFilter

	prepared  bool
	destRoot  string
	dirs      []string
	conflicts *ConflictList
}

type transferJob struct {
	src string
	dst string
}

func newMoveFolder(op *Operation) operator { return newFolderTransfer(op, true) }

func newCopyFolder(op *Operation) operator { return newFolderTransfer(op, false) }

func newFolderTransfer(op *Operation, move bool) *folderTransfer {
	src := op.fs().Join(op.target)

	name := strings.TrimSpace(op.args.Get(ParamNewName))
	if name == "" {
		name = filepath.Base(src)
	}

	return &folderTransfer{
		move:      move,
		src:       src,
		destDir:   op.args.Get(ParamDestinationDirectory),
		name:      name,
		filter:    NewGlobFilter(op.args.Get(ParamExcludePattern)),
		conflicts: NewConflictList(nil),
	}
}

func (f *folderTransfer) displayName() string {
	if f.move {
		return "Moving " + filepath.Base(f.src)
	}

	return "Copying " + filepath.Base(f.src)
}

func (f *folderTransfer) validate(op *Operation) error {
	info, err := op.lstat(f.src, "source folder")
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return invalid("source %s is not a directory", f.src)
	}

	mode := filesystem.AccessRead
	if f.move {
		mode |= filesystem.AccessWrite
	}

	err = op.requireAccess(f.src, "source folder", mode)
	if err != nil {
		return err
	}

	err = op.requireWritableFolder(f.destDir, "destination folder")
	if err != nil {
		return err
	}

	if !f.filter.Valid() {
		return invalid("bad exclude pattern %q", op.args.Get(ParamExcludePattern))
	}

	if !fileops.IsValidFileName(f.name) {
		// asked for in gatherInput, then prepared
		return nil
	}

	return f.prepare(op)
}

// prepare fixes the destination root, flattens the source tree and collects
// the destination files that already exist.
func (f *folderTransfer) prepare(op *Operation) error {
	destRoot := op.fs().Join(f.destDir, f.name)

	if isWithin(destRoot, f.src) {
		return invalid("cannot put %s inside itself", f.src)
	}

	info, err := op.fs().Lstat(destRoot)
	if err == nil && !info.IsDir() {
		return invalid("destination %s exists and is not a directory", destRoot)
	}

	dirs, err := op.fileOps().Flatten(f.src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	found, err := op.fileOps().FindConflicts(dirs, destRoot, len(f.src))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	conflicts := found[:0]

	for _, path := range found {
		if !f.filter.ExcludesPath(path[len(destRoot):]) {
			conflicts = append(conflicts, path)
		}
	}

	f.destRoot = destRoot
	f.dirs = dirs
	f.conflicts = NewConflictList(conflicts)
	f.prepared = true

	op.log.Debug().Str("dest", destRoot).Int("dirs", len(dirs)).Int("conflicts", len(conflicts)).Msg("prepared folder transfer")

	return nil
}

func (f *folderTransfer) gatherInput(op *Operation) {
	if !fileops.IsValidFileName(f.name) {
		op.ask(PromptTextOrCancel, fmt.Sprintf("%q is not a valid folder name. New name:", f.name), 0, false,
			func(answer Answer) {
				if answer.Cancelled {
					op.cancel()
					return
				}

				f.name = strings.TrimSpace(answer.Text)
				f.prepared = false
				f.gatherInput(op)
			})

		return
	}

	if !f.prepared {
		err := f.prepare(op)
		if err != nil {
			op.reject(err)
			return
		}
	}

	if !f.conflicts.Pending() || op.silent {
		op.proceed()
		return
	}

	question := fmt.Sprintf("%s already exists. Overwrite?", f.conflicts.Current())

	op.ask(PromptYesNoRemember, question, f.conflicts.Remaining(), false, func(answer Answer) {
		if answer.Cancelled {
			op.cancel()
			return
		}

		f.conflicts.Resolve(answer.Yes, answer.Remember)
		f.gatherInput(op)
	})
}

func (f *folderTransfer) execute(op *Operation) error {
	fo := op.fileOps()
	prefixLen := len(f.src)

	err := op.fs().MkdirAll(f.destRoot, fileops.DefaultDirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", f.destRoot, err)
	}

	skip := f.conflicts.SkipSet()
	excludedDirs := make(map[string]bool)

	var jobs []transferJob

	for _, dir := range f.dirs {
		if dir != f.src && f.filter.ExcludesPath(dir[prefixLen:]) {
			excludedDirs[dir] = true
			continue
		}

		destDir := fileops.RewritePath(dir, f.destRoot, prefixLen)

		err = op.fs().MkdirAll(destDir, fileops.DefaultDirPermissions)
		if err != nil {
			op.recordError(fmt.Errorf("failed to create %s: %w", destDir, err), destDir)
			continue
		}

		files, err := fo.ListFiles(dir)
		if err != nil {
			op.recordError(err, dir)
			continue
		}

		for _, file := range files {
			if f.filter.ExcludesPath(file[prefixLen:]) {
				continue
			}

			dst := fileops.RewritePath(file, f.destRoot, prefixLen)
			if _, skipped := skip[dst]; skipped {
				continue
			}

			jobs = append(jobs, transferJob{src: file, dst: dst})
		}
	}

	kind := KindCopy
	if f.move {
		kind = KindMove
	}

	total := int64(len(jobs))

	for i, job := range jobs {
		select {
		case <-op.cancelChan():
			return fileops.ErrCancelled
		default:
		}

		err = op.runChild(kind, job.src, job.dst)
		if errors.Is(err, fileops.ErrCancelled) {
			return err
		}

		if err != nil {
			op.recordError(err, job.src)
		}

		op.report(int64(i+1), total)
	}

	if f.move {
		f.removeEmptySources(op, excludedDirs)
	}

	return nil
}

// removeEmptySources deletes source directories left empty by the move,
// deepest first. Directories still holding skipped or excluded entries stay.
func (f *folderTransfer) removeEmptySources(op *Operation, excludedDirs map[string]bool) {
	for i := len(f.dirs) - 1; i >= 0; i-- {
		dir := f.dirs[i]
		if excludedDirs[dir] {
			continue
		}

		_, err := op.fileOps().RemoveIfEmpty(dir)
		if err != nil {
			op.recordError(err, dir)
		}
	}
}
