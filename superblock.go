package fefs

import "encoding/binary"

// fefsMagic is the literal 4-byte volume signature "fefs" (spec.md §3).
var fefsMagic = [4]byte{0x66, 0x65, 0x66, 0x73}

// SuperBlock is the persistent volume descriptor stored at device offset 0.
// Fields are packed little-endian; the layout must round-trip exactly
// through Marshal/Unmarshal since the volume persists across mounts.
type SuperBlock struct {
	Magic            [4]byte
	BytePerSector    uint32
	SectorPerCluster uint32
	SectorPerFAT     uint32
	RootCluster      uint32
}

const superBlockSize = 4 + 4*4

// Valid reports whether the magic matches the FEFS signature.
func (s *SuperBlock) Valid() bool {
	return s.Magic == fefsMagic
}

// Fat returns the byte address where the FAT region begins: immediately
// after the one full sector reserved for the superblock (spec.md §4.2).
func (s *SuperBlock) Fat() int64 {
	return BlockSize
}

// Offset returns the byte address of the first sector of cluster.
func (s *SuperBlock) Offset(cluster uint32) int64 {
	spc := int64(s.SectorPerCluster)
	bps := int64(s.BytePerSector)
	sfat := int64(s.SectorPerFAT)
	return (sfat + (int64(cluster)-int64(s.RootCluster))*spc) * bps
}

// Marshal encodes the superblock into the first superBlockSize bytes of buf.
func (s *SuperBlock) Marshal(buf []byte) {
	copy(buf[0:4], s.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], s.BytePerSector)
	binary.LittleEndian.PutUint32(buf[8:12], s.SectorPerCluster)
	binary.LittleEndian.PutUint32(buf[12:16], s.SectorPerFAT)
	binary.LittleEndian.PutUint32(buf[16:20], s.RootCluster)
}

// Unmarshal decodes a superblock from the first superBlockSize bytes of buf.
func (s *SuperBlock) Unmarshal(buf []byte) {
	copy(s.Magic[:], buf[0:4])
	s.BytePerSector = binary.LittleEndian.Uint32(buf[4:8])
	s.SectorPerCluster = binary.LittleEndian.Uint32(buf[8:12])
	s.SectorPerFAT = binary.LittleEndian.Uint32(buf[12:16])
	s.RootCluster = binary.LittleEndian.Uint32(buf[16:20])
}
