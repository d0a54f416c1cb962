package engine

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/joe/file-modifier/pkg/fileops"
	"github.com/joe/file-modifier/pkg/filesystem"
)

// EncryptedSuffix is appended to encrypted output names by default.
const EncryptedSuffix = ".enc"

// CryptoTransform encrypts and decrypts streams with a password.
type CryptoTransform interface {
	Encrypt(dst io.Writer, src io.Reader, password []byte) error
	Decrypt(dst io.Writer, src io.Reader, password []byte) error
}

// cryptoTransfer writes an encrypted or decrypted copy of a file. The source
// is never modified.
type cryptoTransfer struct {
	encrypt   bool
	src       string
	password  string
	outDir    string
	outName   string
	confirmed bool
}

func newEncryptFile(op *Operation) operator { return newCryptoTransfer(op, true) }

func newDecryptFile(op *Operation) operator { return newCryptoTransfer(op, false) }

func newCryptoTransfer(op *Operation, encrypt bool) *cryptoTransfer {
	outDir := op.args.Get(ParamDestinationDirectory)
	if outDir == "" {
		outDir = filepath.Dir(op.target)
	}

	outName := strings.TrimSpace(op.args.Get(ParamOutputFileName))
	if outName == "" {
		outName = DefaultOutputName(filepath.Base(op.target), encrypt)
	}

	return &cryptoTransfer{
		encrypt:  encrypt,
		src:      op.target,
		password: op.args.Get(ParamEncryptionPassword),
		outDir:   outDir,
		outName:  outName,
	}
}

// DefaultOutputName derives the output file name for an encrypt or decrypt of name.
func DefaultOutputName(name string, encrypt bool) string {
	if encrypt {
		return name + EncryptedSuffix
	}

	if len(name) > len(EncryptedSuffix) && strings.EqualFold(filepath.Ext(name), EncryptedSuffix) {
		return name[:len(name)-len(EncryptedSuffix)]
	}

	return name + ".dec"
}

func (c *cryptoTransfer) displayName() string {
	if c.encrypt {
		return "Encrypting " + filepath.Base(c.src)
	}

	return "Decrypting " + filepath.Base(c.src)
}

func (c *cryptoTransfer) verb() string {
	if c.encrypt {
		return "encrypt"
	}

	return "decrypt"
}

func (c *cryptoTransfer) validate(op *Operation) error {
	info, err := op.lstat(c.src, "file")
	if err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return invalid("%s is not a regular file", c.src)
	}

	err = op.requireAccess(c.src, "file", filesystem.AccessRead)
	if err != nil {
		return err
	}

	return op.requireWritableFolder(c.outDir, "output folder")
}

func (c *cryptoTransfer) gatherInput(op *Operation) {
	if c.password == "" {
		op.ask(PromptTextOrCancel, fmt.Sprintf("Password to %s %s:", c.verb(), filepath.Base(c.src)), 0, true,
			func(answer Answer) {
				if answer.Cancelled {
					op.cancel()
					return
				}

				c.password = answer.Text
				c.gatherInput(op)
			})

		return
	}

	if !fileops.IsValidFileName(c.outName) {
		op.ask(PromptTextOrCancel, fmt.Sprintf("%q is not a valid file name. Output name:", c.outName), 0, false,
			func(answer Answer) {
				if answer.Cancelled {
					op.cancel()
					return
				}

				c.outName = strings.TrimSpace(answer.Text)
				c.gatherInput(op)
			})

		return
	}

	out := op.fs().Join(c.outDir, c.outName)
	if out == op.fs().Join(c.src) {
		op.reject(invalid("output %s would overwrite the source", out))
		return
	}

	info, err := op.fs().Lstat(out)

	switch {
	case err != nil && !isMissing(err):
		op.reject(fmt.Errorf("%w: cannot access output %s: %w", ErrValidation, out, err))
	case err != nil || c.confirmed:
		op.proceed()
	case info.IsDir():
		op.reject(invalid("output %s is a directory", out))
	default:
		op.ask(PromptYesNo, fmt.Sprintf("%s already exists. Overwrite?", c.outName), 1, false, func(answer Answer) {
			if answer.Cancelled || !answer.Yes {
				op.cancel()
				return
			}

			c.confirmed = true
			op.proceed()
		})
	}
}

func (c *cryptoTransfer) execute(op *Operation) error {
	out := op.fs().Join(c.outDir, c.outName)

	in, err := op.fs().Open(c.src)
	if err != nil {
		op.recordError(err, c.src)
		return nil
	}

	defer func() {
		_ = in.Close()
	}()

	info, err := in.Stat()
	if err != nil {
		op.recordError(err, c.src)
		return nil
	}

	dst, err := op.fs().Create(out)
	if err != nil {
		op.recordError(err, out)
		return nil
	}

	reader := &progressReader{
		r:      in,
		total:  info.Size(),
		cancel: op.cancelChan(),
		report: op.report,
	}

	if c.encrypt {
		err = op.engine.crypto.Encrypt(dst, reader, []byte(c.password))
	} else {
		err = op.engine.crypto.Decrypt(dst, reader, []byte(c.password))
	}

	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}

	if err == nil {
		return nil
	}

	if removeErr := op.fs().Remove(out); removeErr != nil {
		op.log.Warn().Err(removeErr).Str("path", out).Msg("failed to remove partial output")
	}

	if op.ctx.Err() != nil || errors.Is(err, fileops.ErrCancelled) {
		return fileops.ErrCancelled
	}

	op.recordError(fmt.Errorf("failed to %s %s: %w", c.verb(), c.src, err), c.src)

	return nil
}

// progressReader reports bytes read and stops with ErrCancelled once cancel closes.
type progressReader struct {
	r      io.Reader
	done   int64
	total  int64
	cancel <-chan struct{}
	report func(done, total int64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	select {
	case <-p.cancel:
		return 0, fileops.ErrCancelled
	default:
	}

	n, err := p.r.Read(buf)
	if n > 0 {
		p.done += int64(n)
		p.report(p.done, p.total)
	}

	return n, err //nolint:wrapcheck // io.Reader contract
}
