package tools

import (
	"fmt"

	"github.com/golang/glog"
)

var isEnabled = true

func DisableLogger() {
	isEnabled = false
}

// Logs progress messages unless the logger has been silenced. Errors always go through glog directly.
func LogOutput(val ...interface{}) {
	if isEnabled {
		glog.InfoDepth(1, fmt.Sprintln(val...))
	}
}
