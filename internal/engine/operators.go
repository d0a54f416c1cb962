package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joe/file-modifier/pkg/filesystem"
)

// Exported errors.
var (
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrUnknownKind          = errors.New("unknown operation kind")
	ErrValidation           = errors.New("invalid request")
	ErrEngineClosed         = errors.New("engine is closed")
	ErrEmptyTarget          = errors.New("target path is empty")
	ErrOperationPanicked    = errors.New("operation panicked")
)

// operator is the per-kind behaviour behind an Operation.
//
// validate checks the request without side effects. gatherInput must end in
// exactly one of op.proceed, op.cancel or op.reject, possibly after one or
// more op.ask round trips. execute does the work and returns only fatal or
// cancellation errors; per-file failures go through op.recordError.
type operator interface {
	validate(op *Operation) error
	gatherInput(op *Operation)
	execute(op *Operation) error
	displayName() string
}

// operatorFactory builds an operator from the operation's target and params.
type operatorFactory func(op *Operation) operator

type dispatchKey struct {
	kind  Kind
	isDir bool
}

//nolint:gochecknoglobals // fixed dispatch table
var operatorTable = map[dispatchKey]operatorFactory{
	{KindDelete, false}:      newDeleteFile,
	{KindDelete, true}:       newDeleteFolder,
	{KindCreateFolder, true}: newCreateFolder,
	{KindMove, false}:        newMoveFile,
	{KindCopy, false}:        newCopyFile,
	{KindMove, true}:         newMoveFolder,
	{KindCopy, true}:         newCopyFolder,
	{KindEncrypt, false}:     newEncryptFile,
	{KindDecrypt, false}:     newDecryptFile,
}

// lookupOperator picks the operator for kind applied to a file or folder.
// When the target does not exist either shape will do; validation reports it.
func lookupOperator(kind Kind, isDir, exists bool) (operatorFactory, error) {
	factory, ok := operatorTable[dispatchKey{kind, isDir}]
	if ok {
		return factory, nil
	}

	if !exists {
		factory, ok = operatorTable[dispatchKey{kind, !isDir}]
		if ok {
			return factory, nil
		}
	}

	shape := "file"
	if isDir {
		shape = "folder"
	}

	return nil, fmt.Errorf("%w: %s on a %s", ErrUnsupportedOperation, kind, shape)
}

func childParams(dst string) Params {
	return Params{
		ParamDestinationDirectory: filepath.Dir(dst),
		ParamNewName:              filepath.Base(dst),
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}

// lstat returns the entry at path without following a final symlink.
func (op *Operation) lstat(path, role string) (os.FileInfo, error) {
	if path == "" {
		return nil, invalid("no %s given", role)
	}

	info, err := op.fs().Lstat(path)
	if err != nil {
		if isMissing(err) {
			return nil, invalid("%s %s does not exist", role, path)
		}

		return nil, fmt.Errorf("%w: cannot access %s %s: %w", ErrValidation, role, path, err)
	}

	return info, nil
}

// requireFolder checks that path resolves to a directory.
func (op *Operation) requireFolder(path, role string) error {
	if path == "" {
		return invalid("no %s given", role)
	}

	info, err := op.fs().Stat(path)
	if err != nil {
		if isMissing(err) {
			return invalid("%s %s does not exist", role, path)
		}

		return fmt.Errorf("%w: cannot access %s %s: %w", ErrValidation, role, path, err)
	}

	if !info.IsDir() {
		return invalid("%s %s is not a directory", role, path)
	}

	return nil
}

func (op *Operation) requireAccess(path, role string, mode filesystem.AccessMode) error {
	err := op.fs().Access(path, mode)
	if err == nil {
		return nil
	}

	verb := "writable"
	if mode == filesystem.AccessRead {
		verb = "readable"
	}

	if errors.Is(err, filesystem.ErrPermission) || errors.Is(err, fs.ErrPermission) {
		return invalid("%s %s is not %s: permission denied", role, path, verb)
	}

	return fmt.Errorf("%w: cannot access %s %s: %w", ErrValidation, role, path, err)
}

// requireWritableFolder checks that path is a directory new entries can be created in.
func (op *Operation) requireWritableFolder(path, role string) error {
	err := op.requireFolder(path, role)
	if err != nil {
		return err
	}

	return op.requireAccess(path, role, filesystem.AccessWrite)
}

// isWithin reports whether path is root or lies below it.
func isWithin(path, root string) bool {
	if path == root {
		return true
	}

	return strings.HasPrefix(path, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}
