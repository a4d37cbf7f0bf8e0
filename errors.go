package fefs

// DirError is the recoverable error taxonomy returned by directory
// operations. It follows the teacher's fileResult pattern: a small closed
// integer enum with an Error() method, compared directly rather than wrapped.
type DirError int

const (
	// NotFound is the generic not-found error, used by Delete.
	NotFound DirError = iota + 1
	// NotFoundDir is returned by Cd when the name does not resolve to a
	// directory entry.
	NotFoundDir
	// NotFoundFile is returned by OpenFile when the name does not resolve
	// to a file entry.
	NotFoundFile
	// IllegalChar is returned by Mkdir/CreateFile when name contains one of
	// the reserved characters.
	IllegalChar
	// DirExist is returned by Mkdir when name already names a directory or
	// file in the parent.
	DirExist
	// FileExist is returned by CreateFile when name already names a
	// directory or file in the parent.
	FileExist
)

func (e DirError) Error() string {
	switch e {
	case NotFound:
		return "fefs: entry not found"
	case NotFoundDir:
		return "fefs: directory not found"
	case NotFoundFile:
		return "fefs: file not found"
	case IllegalChar:
		return "fefs: illegal character in name"
	case DirExist:
		return "fefs: directory already exists"
	case FileExist:
		return "fefs: file already exists"
	default:
		return "fefs: unknown directory error"
	}
}

// FileError is the recoverable error taxonomy returned by file operations.
type FileError int

const (
	// SeekValueOverFlow is returned by Seek when the requested position is
	// past the end of the file.
	SeekValueOverFlow FileError = iota + 1
	// BufTooSmall is reserved for implementations that reject oversize
	// source buffers outright; this implementation never returns it but
	// keeps it defined for API parity with the design (spec.md §7).
	BufTooSmall
)

func (e FileError) Error() string {
	switch e {
	case SeekValueOverFlow:
		return "fefs: seek value overflows file size"
	case BufTooSmall:
		return "fefs: buffer too small"
	default:
		return "fefs: unknown file error"
	}
}

// reservedChars are rejected in Mkdir and CreateFile names (spec.md §6).
const reservedChars = `\/:*?"<>|`

func isIllegal(name string) bool {
	if name == "" || len(name) > maxNameLen {
		return true
	}
	for _, r := range reservedChars {
		for _, c := range name {
			if c == r {
				return true
			}
		}
	}
	return false
}
