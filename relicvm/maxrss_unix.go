//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package relicvm

import "golang.org/x/sys/unix"

func maxRSS() int64 {
	var usage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &usage); err != nil {
		return 0
	}
	return int64(usage.Maxrss)
}
