//go:build unix

package version

import "golang.org/x/sys/unix"

// kernelRelease returns the uname release string, or "" if uname fails.
func kernelRelease() string {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return ""
	}
	return unix.ByteSliceToString(u.Release[:])
}
