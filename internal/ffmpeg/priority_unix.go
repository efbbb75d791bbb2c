//go:build unix

package ffmpeg

import "golang.org/x/sys/unix"

// lowestPriority is the nice value used for responsive mode.
const lowestPriority = 19

func lowerPriority(pid int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, pid, lowestPriority)
}
