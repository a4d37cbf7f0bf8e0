package fefs

import (
	"github.com/sirupsen/logrus"
)

// traceLevel sits one notch below logrus.DebugLevel, mirroring the teacher's
// slogLevelTrace = slog.LevelDebug - 2: individual block and cluster
// operations are noisy enough that they warrant their own level below debug.
const traceLevel = logrus.TraceLevel

// lastMountLog is the logger of the most recently mounted volume in this
// process. It backs corruption-panic logging for value types like Inode that
// have no FileSystem back-reference of their own (spec.md §9: inodes carry
// no metadata beyond the fields the original layout defines). Set by
// SetLogger and by Create/Open when a logger is supplied.
var lastMountLog *logrus.Logger

func (fs *FileSystem) trace(msg string, fields logrus.Fields) {
	if fs.log == nil {
		return
	}
	fs.log.WithFields(fields).Log(traceLevel, msg)
}

func (fs *FileSystem) debugf(msg string, fields logrus.Fields) {
	if fs.log == nil {
		return
	}
	fs.log.WithFields(fields).Debug(msg)
}

func (fs *FileSystem) warnf(msg string, fields logrus.Fields) {
	if fs.log == nil {
		return
	}
	fs.log.WithFields(fields).Warn(msg)
}

func (fs *FileSystem) logerror(msg string, fields logrus.Fields) {
	if fs.log == nil {
		return
	}
	fs.log.WithFields(fields).Error(msg)
}

// logCorruption logs a structural/corruption error using the last mounted
// volume's logger, for panic sites reached from types with no FileSystem
// back-reference (inode.go's Name, decoding a record with no owner in
// scope).
func logCorruption(msg string, fields logrus.Fields) {
	if lastMountLog == nil {
		return
	}
	lastMountLog.WithFields(fields).Error(msg)
}
