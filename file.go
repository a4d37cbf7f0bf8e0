package fefs

import "github.com/sirupsen/logrus"

// WriteType selects how FileEntry.Write treats existing data.
type WriteType uint8

const (
	// OverWritten discards existing data and replaces it with the written
	// buffer.
	OverWritten WriteType = iota
	// Append adds the written buffer after the file's current contents.
	Append
)

// FileEntry is an open file: its cluster chain, byte size, seek cursor, and
// the absolute device address of its backing inode slot for metadata
// writeback (spec.md §4.6). Like DirEntry it is not safe for concurrent use
// by itself.
type FileEntry struct {
	fs       *FileSystem
	clusters []uint32
	size     int64
	seekAt   int64
	addr     int64 // 0 for a FileEntry not backed by a directory slot (internal use by Delete)
}

// Size returns the file's current byte size.
func (fe *FileEntry) Size() int64 { return fe.size }

// Seek sets the read cursor to at, which must not exceed the file's size.
func (fe *FileEntry) Seek(at int64) error {
	if at > fe.size {
		return SeekValueOverFlow
	}
	fe.seekAt = at
	return nil
}

func (fe *FileEntry) sectorAddr(sectorIdx int64) int64 {
	spc := int64(fe.fs.sblock.SectorPerCluster)
	clusterIdx := sectorIdx / spc
	sectorInCluster := sectorIdx % spc
	cluster := fe.clusters[clusterIdx]
	return fe.fs.sblock.Offset(cluster) + sectorInCluster*BlockSize
}

// Read copies bytes starting at the current seek position into buf, stopping
// at the lesser of len(buf) and the remaining file size, and advances the
// cursor by the number of bytes copied. Calling it with an empty buf is a
// programmer error (use ReadToVec).
func (fe *FileEntry) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		fe.fs.logerror("fefs: Read called with empty buffer", logrus.Fields{})
		panic("fefs: Read called with empty buffer; use ReadToVec")
	}
	fe.fs.trace("file:read", logrus.Fields{"len": len(buf), "seek_at": fe.seekAt})

	remain := fe.size - fe.seekAt
	if remain <= 0 {
		return 0, nil
	}
	n := int64(len(buf))
	if n > remain {
		n = remain
	}

	pos := fe.seekAt
	var copied int64
	for copied < n {
		idx := pos / BlockSize
		off := int(pos % BlockSize)
		toCopy := int64(BlockSize - off)
		if toCopy > n-copied {
			toCopy = n - copied
		}
		addr := fe.sectorAddr(idx)
		h := fe.fs.cache.Get(addr)
		h.Read(off, int(toCopy), func(b []byte) { copy(buf[copied:copied+toCopy], b) })
		h.Release()
		copied += toCopy
		pos += toCopy
	}
	fe.seekAt += copied
	return int(copied), nil
}

// ReadToVec clears buf and appends the entire remaining file starting at the
// current seek position; unlike Read, the seek position is not advanced.
func (fe *FileEntry) ReadToVec(buf *[]byte) (int, error) {
	fe.fs.trace("file:read_to_vec", logrus.Fields{"seek_at": fe.seekAt})
	*buf = (*buf)[:0]

	pos := fe.seekAt
	for pos < fe.size {
		idx := pos / BlockSize
		off := int(pos % BlockSize)
		toCopy := int64(BlockSize - off)
		if toCopy > fe.size-pos {
			toCopy = fe.size - pos
		}
		addr := fe.sectorAddr(idx)
		h := fe.fs.cache.Get(addr)
		h.Read(off, int(toCopy), func(b []byte) { *buf = append(*buf, b...) })
		h.Release()
		pos += toCopy
	}
	return len(*buf), nil
}

// Write writes buf to the file according to writeType and persists the
// updated size/cluster into the backing inode slot. An empty buf is a no-op.
func (fe *FileEntry) Write(buf []byte, writeType WriteType) error {
	if len(buf) == 0 {
		return nil
	}
	fe.fs.trace("file:write", logrus.Fields{"len": len(buf), "append": writeType == Append})

	switch writeType {
	case OverWritten:
		fe.writeOverwrite(buf)
	case Append:
		fe.writeAppend(buf)
	}
	fe.updateInode()
	return nil
}

func (fe *FileEntry) writeOverwrite(buf []byte) {
	fe.cleanData()
	fe.fs.fat.Dealloc(fe.clusters[0])
	fe.clusters = fe.fs.fat.Alloc(len(buf))

	pos := 0
	for pos < len(buf) {
		idx := int64(pos / BlockSize)
		end := pos + BlockSize
		if end > len(buf) {
			end = len(buf)
		}
		addr := fe.sectorAddr(idx)
		h := fe.fs.cache.Get(addr)
		h.Modify(0, end-pos, func(b []byte) { copy(b, buf[pos:end]) })
		h.Release()
		pos = end
	}
	fe.size = int64(len(buf))
}

// writeAppend implements the three-phase append described in spec.md §4.6:
// fill the partial sector at the current write position, fill remaining
// whole sectors in the current cluster, then allocate and fill new clusters
// for whatever remains.
func (fe *FileEntry) writeAppend(buf []byte) {
	bpc := int64(fe.fs.sblock.SectorPerCluster) * BlockSize
	clusterIdx := fe.size / bpc
	wroteInCluster := fe.size % bpc
	sectorIdx := wroteInCluster / BlockSize
	offsetInSector := wroteInCluster % BlockSize

	remaining := buf
	spc := int64(fe.fs.sblock.SectorPerCluster)

	// fe.size a non-zero multiple of the cluster capacity means the current chain
	// has no partial sector to write into — every cluster in fe.clusters is
	// already full. Skip straight to allocating new clusters instead of
	// indexing one past the end of fe.clusters.
	if wroteInCluster != 0 || fe.size == 0 {
		cluster := fe.clusters[clusterIdx]

		firstLen := int64(BlockSize) - offsetInSector
		if firstLen > int64(len(remaining)) {
			firstLen = int64(len(remaining))
		}
		addr := fe.fs.sblock.Offset(cluster) + sectorIdx*BlockSize
		h := fe.fs.cache.Get(addr)
		h.Modify(int(offsetInSector), int(firstLen), func(b []byte) { copy(b, remaining[:firstLen]) })
		h.Release()
		remaining = remaining[firstLen:]
		sectorIdx++

		for len(remaining) > 0 && sectorIdx < spc {
			n := int64(BlockSize)
			if n > int64(len(remaining)) {
				n = int64(len(remaining))
			}
			addr := fe.fs.sblock.Offset(cluster) + sectorIdx*BlockSize
			h := fe.fs.cache.Get(addr)
			h.Modify(0, int(n), func(b []byte) { copy(b, remaining[:n]) })
			h.Release()
			remaining = remaining[n:]
			sectorIdx++
		}
	}

	if len(remaining) > 0 {
		tail := fe.clusters[len(fe.clusters)-1]
		newChain := fe.fs.fat.Increase(tail, len(remaining))
		fe.clusters = append(fe.clusters, newChain...)

		pos := 0
		for _, c := range newChain {
			base := fe.fs.sblock.Offset(c)
			for s := int64(0); s < spc && pos < len(remaining); s++ {
				n := BlockSize
				if pos+n > len(remaining) {
					n = len(remaining) - pos
				}
				addr := base + s*BlockSize
				h := fe.fs.cache.Get(addr)
				h.Modify(0, n, func(b []byte) { copy(b, remaining[pos:pos+n]) })
				h.Release()
				pos += n
			}
		}
	}

	fe.size += int64(len(buf))
}

// cleanData zeroes every sector in the chain's full allocation.
func (fe *FileEntry) cleanData() {
	spc := int64(fe.fs.sblock.SectorPerCluster)
	for _, c := range fe.clusters {
		base := fe.fs.sblock.Offset(c)
		for s := int64(0); s < spc; s++ {
			addr := base + s*BlockSize
			h := fe.fs.cache.Get(addr)
			h.Modify(0, BlockSize, func(b []byte) {
				for i := range b {
					b[i] = 0
				}
			})
			h.Release()
		}
	}
}

func (fe *FileEntry) updateInode() {
	if fe.addr == 0 {
		return
	}
	h := fe.fs.cache.Get(fe.addr)
	h.Modify(0, inodeSize, func(b []byte) {
		var inode Inode
		inode.Unmarshal(b)
		inode.SizeLo = uint32(fe.size)
		inode.Cluster = fe.clusters[0]
		inode.Marshal(b)
	})
	h.Release()
}
