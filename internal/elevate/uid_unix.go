//go:build unix

package elevate

import "golang.org/x/sys/unix"

func effectiveUID() int {
	return unix.Geteuid()
}
