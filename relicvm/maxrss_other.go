//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package relicvm

func maxRSS() int64 {
	return 0
}
