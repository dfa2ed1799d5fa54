package registry

import "fmt"

// BytesToHuman formats bytes the way `ls -h` does, grounded on the
// teacher's commands/base.go helper of the same name.
func BytesToHuman(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	units := "KMGTPE"
	value := float64(bytes) / float64(div)
	if value > 10 {
		return fmt.Sprintf("%.0f%c", value, units[exp])
	}
	return fmt.Sprintf("%.1f%c", value, units[exp])
}

func errResult(format string, args ...interface{}) ExecResult {
	return ExecResult{Stderr: fmt.Sprintf(format+"\n", args...), ExitCode: 1}
}
