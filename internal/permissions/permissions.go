// Package permissions checks whether files can be renamed in place and
// carries ownership over to copies.
package permissions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"golang.org/x/sys/unix"
)

// CanRename reports whether the current process may rename path, which
// needs write and search permission on its directory. A missing path
// returns false without error.
func CanRename(path string) (bool, error) {
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	err := unix.Access(filepath.Dir(path), unix.W_OK|unix.X_OK)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, unix.EACCES) || errors.Is(err, unix.EROFS) {
		return false, nil
	}
	return false, err
}

// GetFileOwnership returns UID and GID of a file
func GetFileOwnership(path string) (int, int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return -1, -1, err
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return -1, -1, fmt.Errorf("failed to get file stat")
	}

	return int(stat.Uid), int(stat.Gid), nil
}

// NeedsOwnershipChange checks if file ownership differs from target
func NeedsOwnershipChange(path string, targetUID, targetGID int) (bool, error) {
	if targetUID < 0 && targetGID < 0 {
		return false, nil // No target ownership specified
	}

	currentUID, currentGID, err := GetFileOwnership(path)
	if err != nil {
		return false, err
	}

	if targetUID >= 0 && currentUID != targetUID {
		return true, nil
	}
	if targetGID >= 0 && currentGID != targetGID {
		return true, nil
	}

	return false, nil
}

// MatchOwnership gives dst the owner and group of src when they differ.
func MatchOwnership(src, dst string) error {
	uid, gid, err := GetFileOwnership(src)
	if err != nil {
		return err
	}
	change, err := NeedsOwnershipChange(dst, uid, gid)
	if err != nil || !change {
		return err
	}
	if err := os.Lchown(dst, uid, gid); err != nil {
		return fmt.Errorf("failed to chown (may need sudo): %w", err)
	}
	return nil
}
