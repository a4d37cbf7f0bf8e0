package fefs

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// InodeType tags an inode slot. TypeNone marks a free slot and terminates
// forward scans (spec.md §3's NoneEntry/DirEntry/FileEntry; renamed Type*
// here since DirEntry and FileEntry already name this package's directory
// and file handle types).
type InodeType uint8

const (
	TypeNone InodeType = iota
	TypeDir
	TypeFile
)

// maxNameLen is the fixed name field length; names longer than this are
// rejected by Mkdir/CreateFile as illegal (spec.md §1 non-goal: "long
// filenames beyond the fixed inode name field").
const maxNameLen = 16

// Inode is the fixed-size, one-per-sector directory entry record. Field
// order and sizes match the design in spec.md §3; "Reserved" fields are
// stored verbatim with semantics left to higher layers, exactly as the
// original Rust INode carries i_mode/i_uid/... without interpreting them.
type Inode struct {
	Type       InodeType
	Name       [maxNameLen]byte
	NameLen    uint8
	Mode       uint16
	UID        uint16
	GID        uint16
	SizeLo     uint32
	ATime      uint32
	CTime      uint32
	MTime      uint32
	DTime      uint32
	LinksCount uint16
	BlocksLo   uint16
	Flags      uint32
	Cluster    uint32
	PreCluster uint32
	Offset     uint32
}

// inodeSize is the packed on-disk size of an Inode. It is well under
// BlockSize, which is intentional: this implementation packs one inode per
// sector (spec.md §9 open question), the simplest conforming choice.
const inodeSize = 1 + maxNameLen + 1 + 2 + 2 + 2 + 4 + 4 + 4 + 4 + 4 + 2 + 2 + 4 + 4 + 4 + 4

// IsDir reports whether the inode is a directory entry.
func (n *Inode) IsDir() bool { return n.Type == TypeDir }

// IsFile reports whether the inode is a file entry.
func (n *Inode) IsFile() bool { return n.Type == TypeFile }

// IsNone reports whether the slot is free.
func (n *Inode) IsNone() bool { return n.Type == TypeNone }

// IsValid is the negation of IsNone. Some source variants invert this sense;
// this implementation keeps it correct per spec.md §9's warning.
func (n *Inode) IsValid() bool { return !n.IsNone() }

// Name decodes the stored name bytes as UTF-8. Malformed names are a
// corruption-level error (spec.md §4.4) and panic rather than returning a
// zero value, since a well-formed on-disk inode can never produce one.
func (n *Inode) Name() string {
	b := n.nameBytes()
	if !utf8.Valid(b) {
		logCorruption("fefs: corrupt inode: name is not valid utf-8", logrus.Fields{"name_len": n.NameLen})
		panic("fefs: corrupt inode: name is not valid utf-8")
	}
	return string(b)
}

// nameBytes returns the raw name bytes (length NameLen), without the UTF-8
// validation Name performs.
func (n *Inode) nameBytes() []byte {
	l := int(n.NameLen)
	if l > maxNameLen {
		l = maxNameLen
	}
	return n.Name[:l]
}

// ClusterNum returns the head of the entity's data chain.
func (n *Inode) ClusterNum() uint32 { return n.Cluster }

func setName(n *Inode, name string) {
	l := copy(n.Name[:], name)
	n.NameLen = uint8(l)
}

// Marshal encodes the inode into the first inodeSize bytes of buf.
func (n *Inode) Marshal(buf []byte) {
	buf[0] = byte(n.Type)
	copy(buf[1:1+maxNameLen], n.Name[:])
	o := 1 + maxNameLen
	buf[o] = n.NameLen
	o++
	binary.LittleEndian.PutUint16(buf[o:], n.Mode)
	o += 2
	binary.LittleEndian.PutUint16(buf[o:], n.UID)
	o += 2
	binary.LittleEndian.PutUint16(buf[o:], n.GID)
	o += 2
	binary.LittleEndian.PutUint32(buf[o:], n.SizeLo)
	o += 4
	binary.LittleEndian.PutUint32(buf[o:], n.ATime)
	o += 4
	binary.LittleEndian.PutUint32(buf[o:], n.CTime)
	o += 4
	binary.LittleEndian.PutUint32(buf[o:], n.MTime)
	o += 4
	binary.LittleEndian.PutUint32(buf[o:], n.DTime)
	o += 4
	binary.LittleEndian.PutUint16(buf[o:], n.LinksCount)
	o += 2
	binary.LittleEndian.PutUint16(buf[o:], n.BlocksLo)
	o += 2
	binary.LittleEndian.PutUint32(buf[o:], n.Flags)
	o += 4
	binary.LittleEndian.PutUint32(buf[o:], n.Cluster)
	o += 4
	binary.LittleEndian.PutUint32(buf[o:], n.PreCluster)
	o += 4
	binary.LittleEndian.PutUint32(buf[o:], n.Offset)
}

// Unmarshal decodes an inode from the first inodeSize bytes of buf.
func (n *Inode) Unmarshal(buf []byte) {
	n.Type = InodeType(buf[0])
	copy(n.Name[:], buf[1:1+maxNameLen])
	o := 1 + maxNameLen
	n.NameLen = buf[o]
	o++
	n.Mode = binary.LittleEndian.Uint16(buf[o:])
	o += 2
	n.UID = binary.LittleEndian.Uint16(buf[o:])
	o += 2
	n.GID = binary.LittleEndian.Uint16(buf[o:])
	o += 2
	n.SizeLo = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	n.ATime = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	n.CTime = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	n.MTime = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	n.DTime = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	n.LinksCount = binary.LittleEndian.Uint16(buf[o:])
	o += 2
	n.BlocksLo = binary.LittleEndian.Uint16(buf[o:])
	o += 2
	n.Flags = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	n.Cluster = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	n.PreCluster = binary.LittleEndian.Uint32(buf[o:])
	o += 4
	n.Offset = binary.LittleEndian.Uint32(buf[o:])
}
