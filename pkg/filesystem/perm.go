package filesystem

import "os"

// modeAllows checks the owner permission bits of perm against mode.
func modeAllows(perm os.FileMode, mode AccessMode) error {
	if mode&AccessRead != 0 && perm&0o400 == 0 {
		return ErrPermission
	}

	if mode&AccessWrite != 0 && perm&0o200 == 0 {
		return ErrPermission
	}

	return nil
}
