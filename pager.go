package bptree

import "os"

import "golang.org/x/sys/unix"


//============================================= Pager


// pager owns the backing file and its memory mapping. It serves
// fixed-offset reads/writes of the mapped region and grows the file (and
// remaps) when a write would exceed current capacity.
//
// Grounded on the teacher's IOUtils.go (mMap/munmap/resizeMmap/
// flushRegionToDisk) and the original bpt.h's open_file/grow_file_size/map/
// unmap, adapted from sirgallo-mari's atomic.Value-guarded concurrent
// mapping to a single-owner field: concurrent writers and multi-process
// sharing are non-goals here (see spec.md §5), so there is no resizing
// goroutine, no CAS, and no RWMutex guarding the map swap.
type pager struct {
	path string
	file *os.File
	data []byte
	size int64
}

// openPager opens or creates path. When forceEmpty is set, or the file does
// not yet exist, it is created at initialSizeMB and reports isNew=true so
// the caller initializes the Meta block and root leaf. Otherwise the
// existing file's length is rounded up to a power-of-two multiple of
// initialSizeMB (it should already be one; this only self-heals a file that
// was widened out of band) and mapped as-is.
func openPager(path string, forceEmpty bool, initialSizeMB int) (p *pager, isNew bool, err error) {
	stepSize := int64(initialSizeMB) * 1024 * 1024

	flag := os.O_RDWR | os.O_CREATE
	file, openErr := os.OpenFile(path, flag, 0600)
	if openErr != nil { return nil, false, ioFail(openErr, "open backing file") }

	stat, statErr := file.Stat()
	if statErr != nil {
		file.Close()
		return nil, false, ioFail(statErr, "stat backing file")
	}

	isNew = forceEmpty || stat.Size() == 0
	targetSize := stepSize
	if !isNew {
		targetSize = nextPowerOfTwoMultiple(stat.Size(), stepSize)
	}

	if truncErr := file.Truncate(targetSize); truncErr != nil {
		file.Close()
		return nil, false, ioFail(truncErr, "truncate backing file")
	}

	data, mmapErr := unix.Mmap(int(file.Fd()), 0, int(targetSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if mmapErr != nil {
		file.Close()
		return nil, false, ioFail(mmapErr, "mmap backing file")
	}

	return &pager{path: path, file: file, data: data, size: targetSize}, isNew, nil
}

// nextPowerOfTwoMultiple returns the smallest multiple of step that is both
// >= size and itself a power-of-two multiple of step (step * 2^n).
func nextPowerOfTwoMultiple(size, step int64) int64 {
	cur := step
	for cur < size { cur *= 2 }

	return cur
}

// read copies size bytes starting at offset out of the mapped region into a
// caller-owned buffer.
func (p *pager) read(offset int64, size int) ([]byte, error) {
	if offset < 0 || size < 0 || offset+int64(size) > p.size {
		return nil, fail(ErrIoError, nil, "read out of bounds")
	}

	out := make([]byte, size)
	copy(out, p.data[offset:offset+int64(size)])

	return out, nil
}

// write copies buf into the mapped region at offset, growing the file first
// if the write would not fit.
func (p *pager) write(offset int64, buf []byte) error {
	if err := p.ensure(offset, len(buf)); err != nil { return err }

	copy(p.data[offset:offset+int64(len(buf))], buf)
	return nil
}

// ensure grows the file until offset+size fits inside the mapped region.
// Any byte slice obtained from a prior read/write call must not be reused
// across a call to ensure that actually grows: grow() invalidates the
// mapping's base address.
func (p *pager) ensure(offset int64, size int) error {
	for offset+int64(size) > p.size {
		if err := p.grow(); err != nil { return err }
	}

	return nil
}

// grow doubles the file length and remaps. All previously held references
// into the old mapping are invalid after this call; callers must re-read
// any node they need by offset rather than reuse a cached slice.
func (p *pager) grow() error {
	oldSize := p.size
	newSize := oldSize * 2

	if err := p.file.Sync(); err != nil { return ioFail(err, "sync before grow") }

	if err := unix.Munmap(p.data); err != nil { return ioFail(err, "unmap before grow") }
	p.data = nil

	if err := p.file.Truncate(newSize); err != nil { return ioFail(err, "truncate during grow") }

	data, mmapErr := unix.Mmap(int(p.file.Fd()), 0, int(newSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if mmapErr != nil { return ioFail(mmapErr, "remap during grow") }

	p.data = data
	p.size = newSize

	logGrow(p.path, oldSize, newSize)
	return nil
}

// flush synchronously syncs the mapped region and the file to disk.
func (p *pager) flush() error {
	if err := unix.Msync(p.data, unix.MS_SYNC); err != nil { return ioFail(err, "msync") }
	if err := p.file.Sync(); err != nil { return ioFail(err, "fsync") }

	return nil
}

// close flushes, unmaps, and closes the backing file.
func (p *pager) close() error {
	flushErr := p.flush()

	var unmapErr error
	if p.data != nil {
		unmapErr = unix.Munmap(p.data)
		p.data = nil
	}

	closeErr := p.file.Close()

	switch {
		case flushErr != nil:
			return flushErr
		case unmapErr != nil:
			return ioFail(unmapErr, "munmap on close")
		case closeErr != nil:
			return ioFail(closeErr, "close backing file")
		default:
			return nil
	}
}
