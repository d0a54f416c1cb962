package engine

import (
	"fmt"
	"strings"

	"github.com/joe/file-modifier/pkg/fileops"
)

// createFolder makes a new directory named by the newName param inside the
// target. A missing, invalid or taken name is asked for again.
type createFolder struct {
	parent string
	name   string
}

func newCreateFolder(op *Operation) operator {
	return &createFolder{
		parent: op.target,
		name:   strings.TrimSpace(op.args.Get(ParamNewName)),
	}
}

func (c *createFolder) displayName() string {
	if c.name == "" {
		return "Creating folder"
	}

	return "Creating folder " + c.name
}

func (c *createFolder) validate(op *Operation) error {
	return op.requireWritableFolder(c.parent, "parent folder")
}

func (c *createFolder) gatherInput(op *Operation) {
	problem, err := c.nameProblem(op)
	if err != nil {
		op.reject(err)
		return
	}

	if problem == "" {
		op.proceed()
		return
	}

	op.ask(PromptTextOrCancel, problem+" Folder name:", 0, false, func(answer Answer) {
		if answer.Cancelled {
			op.cancel()
			return
		}

		c.name = strings.TrimSpace(answer.Text)
		c.gatherInput(op)
	})
}

func (c *createFolder) nameProblem(op *Operation) (string, error) {
	if c.name == "" {
		return "Enter a name for the new folder.", nil
	}

	if !fileops.IsValidFileName(c.name) {
		return fmt.Sprintf("%q is not a valid name.", c.name), nil
	}

	exists, err := op.fileOps().Exists(op.fs().Join(c.parent, c.name))
	if err != nil {
		return "", err
	}

	if exists {
		return fmt.Sprintf("%q already exists.", c.name), nil
	}

	return "", nil
}

func (c *createFolder) execute(op *Operation) error {
	op.report(0, 1)

	path := op.fs().Join(c.parent, c.name)

	err := op.fs().Mkdir(path, fileops.DefaultDirPermissions)
	if err != nil {
		op.recordError(fmt.Errorf("failed to create folder %s: %w", path, err), path)
	}

	op.report(1, 1)

	return nil
}
