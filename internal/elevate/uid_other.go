//go:build !unix

package elevate

import "os"

func effectiveUID() int {
	return os.Geteuid()
}
