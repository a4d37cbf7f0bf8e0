package fefs

import "github.com/sirupsen/logrus"

// DirEntry is an open directory: the materialized cluster chain backing it,
// plus a reference to the owning filesystem (spec.md §4.5). It is not safe
// for concurrent use by itself — the chain and any seek state belong to one
// caller at a time — though the FileSystem it derives from is.
type DirEntry struct {
	fs       *FileSystem
	clusters []uint32
}

// iterSector walks the chain cluster-by-cluster, sector-by-sector (one
// inode per sector), decoding each slot and invoking f with the slot's
// absolute device address. It stops at the first sector where f returns
// true and returns that sector's address, or 0 if the walk completes
// without f returning true. This is the directory iteration primitive of
// spec.md §4.5, expressed as a closure-driven walk rather than the
// original's macro.
func (d *DirEntry) iterSector(f func(addr int64, inode *Inode) bool) int64 {
	spc := d.fs.sblock.SectorPerCluster
	for _, c := range d.clusters {
		base := d.fs.sblock.Offset(c)
		for s := uint32(0); s < spc; s++ {
			addr := base + int64(s)*BlockSize
			h := d.fs.cache.Get(addr)
			var inode Inode
			h.Read(0, inodeSize, func(b []byte) { inode.Unmarshal(b) })
			h.Release()
			if f(addr, &inode) {
				return addr
			}
		}
	}
	return 0
}

// find looks up name in this directory, stopping at the first NoneEntry
// slot per spec.md §3 ("implementations must never read past the first
// NoneEntry for lookup"). It returns the decoded inode and its absolute
// slot address, or a nil inode if not found.
func (d *DirEntry) find(name string) (*Inode, int64) {
	var found Inode
	var ok bool
	addr := d.iterSector(func(_ int64, inode *Inode) bool {
		if inode.IsValid() && inode.Name() == name {
			found = *inode
			ok = true
			return true
		}
		return inode.IsNone()
	})
	if !ok {
		return nil, 0
	}
	return &found, addr
}

// Cd resolves name to a subdirectory and returns a DirEntry over its chain.
func (d *DirEntry) Cd(name string) (*DirEntry, error) {
	inode, _ := d.find(name)
	if inode == nil || !inode.IsDir() {
		return nil, NotFoundDir
	}
	return &DirEntry{fs: d.fs, clusters: d.fs.fat.ReadChain(inode.ClusterNum())}, nil
}

// OpenFile resolves name to a file and returns a FileEntry over its chain,
// remembering the inode's absolute slot address for later metadata
// writeback.
func (d *DirEntry) OpenFile(name string) (*FileEntry, error) {
	inode, addr := d.find(name)
	if inode == nil || !inode.IsFile() {
		return nil, NotFoundFile
	}
	return &FileEntry{
		fs:       d.fs,
		clusters: d.fs.fat.ReadChain(inode.ClusterNum()),
		size:     int64(inode.SizeLo),
		addr:     addr,
	}, nil
}

// firstFreeSlot finds the first NoneEntry slot in this directory's chain,
// extending the chain by one cluster via FATManager.Increase if it is
// saturated (spec.md §4.5). It returns the slot's absolute address.
func (d *DirEntry) firstFreeSlot() int64 {
	addr := d.iterSector(func(_ int64, inode *Inode) bool { return inode.IsNone() })
	if addr != 0 {
		return addr
	}
	tail := d.clusters[len(d.clusters)-1]
	newChain := d.fs.fat.Increase(tail, 0)
	d.clusters = append(d.clusters, newChain...)
	return d.fs.sblock.Offset(newChain[0])
}

func (d *DirEntry) writeInode(addr int64, inode *Inode) {
	h := d.fs.cache.Get(addr)
	h.Modify(0, inodeSize, func(b []byte) { inode.Marshal(b) })
	h.Release()
}

// Mkdir creates a subdirectory named name, allocating a single cluster for
// its (initially empty) contents.
func (d *DirEntry) Mkdir(name string) (*DirEntry, error) {
	d.fs.trace("dir:mkdir", logrus.Fields{"name": name})
	if isIllegal(name) {
		return nil, IllegalChar
	}
	if inode, _ := d.find(name); inode != nil {
		d.fs.warnf("fefs: mkdir: already exists", logrus.Fields{"name": name})
		return nil, DirExist
	}
	chain := d.fs.fat.Alloc(0)
	slotAddr := d.firstFreeSlot()

	var inode Inode
	inode.Type = TypeDir
	setName(&inode, name)
	inode.Cluster = chain[0]
	inode.PreCluster = d.clusters[0]
	d.writeInode(slotAddr, &inode)

	return &DirEntry{fs: d.fs, clusters: chain}, nil
}

// CreateFile creates an empty file named name.
func (d *DirEntry) CreateFile(name string) (*FileEntry, error) {
	d.fs.trace("dir:create_file", logrus.Fields{"name": name})
	if isIllegal(name) {
		return nil, IllegalChar
	}
	if inode, _ := d.find(name); inode != nil {
		d.fs.warnf("fefs: create_file: already exists", logrus.Fields{"name": name})
		return nil, FileExist
	}
	chain := d.fs.fat.Alloc(0)
	slotAddr := d.firstFreeSlot()

	var inode Inode
	inode.Type = TypeFile
	setName(&inode, name)
	inode.Cluster = chain[0]
	inode.PreCluster = d.clusters[0]
	inode.SizeLo = 0
	d.writeInode(slotAddr, &inode)

	return &FileEntry{fs: d.fs, clusters: chain, size: 0, addr: slotAddr}, nil
}

// Ls collects every valid inode up to the first NoneEntry slot.
func (d *DirEntry) Ls() []Inode {
	var entries []Inode
	d.iterSector(func(_ int64, inode *Inode) bool {
		if inode.IsValid() {
			entries = append(entries, *inode)
		}
		return inode.IsNone()
	})
	return entries
}

// Delete removes name from this directory: directories are removed
// recursively (contents cleaned and freed first), files have their data
// zeroed and chain freed, and finally the parent's inode slot is zeroed,
// producing a NoneEntry so the terminates-iteration invariant holds
// (spec.md §4.5).
func (d *DirEntry) Delete(name string) error {
	d.fs.trace("dir:delete", logrus.Fields{"name": name})
	inode, addr := d.find(name)
	if inode == nil {
		return NotFound
	}

	if inode.IsDir() {
		sub := &DirEntry{fs: d.fs, clusters: d.fs.fat.ReadChain(inode.ClusterNum())}
		sub.deleteContents()
	} else {
		file := &FileEntry{fs: d.fs, clusters: d.fs.fat.ReadChain(inode.ClusterNum()), size: int64(inode.SizeLo)}
		file.cleanData()
	}
	d.fs.fat.Dealloc(inode.ClusterNum())

	var none Inode
	d.writeInode(addr, &none)
	return nil
}

// deleteContents recursively deletes every entry in this directory (used
// internally by Delete for a directory target) and frees their clusters,
// but does not touch this directory's own inode slot in its parent — the
// caller owns that.
func (d *DirEntry) deleteContents() {
	type pending struct {
		addr  int64
		inode Inode
	}
	var items []pending
	d.iterSector(func(addr int64, inode *Inode) bool {
		if inode.IsValid() {
			items = append(items, pending{addr: addr, inode: *inode})
		}
		return inode.IsNone()
	})

	for i := range items {
		inode := &items[i].inode
		if inode.IsDir() {
			sub := &DirEntry{fs: d.fs, clusters: d.fs.fat.ReadChain(inode.ClusterNum())}
			sub.deleteContents()
		} else {
			file := &FileEntry{fs: d.fs, clusters: d.fs.fat.ReadChain(inode.ClusterNum()), size: int64(inode.SizeLo)}
			file.cleanData()
		}
		d.fs.fat.Dealloc(inode.ClusterNum())
	}

	// Zero every consumed slot by the address captured during the initial
	// walk. Re-deriving addresses by name after earlier siblings have
	// already been zeroed is wrong: find/iterSector stops at the first
	// NoneEntry (spec.md §3), so any sibling past the first zeroed slot
	// would never be found again.
	for i := range items {
		var none Inode
		d.writeInode(items[i].addr, &none)
	}
}
