package zdb

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"unsafe"

	"github.com/zdb-io/zdb/internal/sys"
)

type Config struct {
	Path   string
	Logger *slog.Logger
}

type Pager struct {
	file     *os.File
	path     string
	dat      []byte
	pageSize uint32
	// allocation high-water mark, the bound checked by GetPage; the
	// metadata pageCount tracks the file capacity instead
	pageCount   uint32
	txActive    bool
	txPageCount uint32
	dirty       map[PageId]struct{}
	snapshots   map[PageId][]byte
	logger      *slog.Logger
	stat        iStat
}

func OpenPager(cfg Config) (p *Pager, err error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p = &Pager{
		path:     cfg.Path,
		pageSize: uint32(sys.GetSysPageSize()),
		logger:   logger,
	}
	p.file, err = sys.OpenFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database file: %w", err)
	}
	err = sys.FileLock(p.file)
	if err != nil {
		p.file.Close()
		if errors.Is(err, sys.ErrLockHeld) {
			return nil, ErrLockBusy
		}
		return nil, fmt.Errorf("lock database file: %w", err)
	}
	stat, err := p.file.Stat()
	if err != nil {
		p.closeFile()
		return nil, fmt.Errorf("stat database file: %w", err)
	}
	if stat.Size() == 0 {
		err = p.initFile()
	} else {
		err = p.loadFile(uint64(stat.Size()))
	}
	if err != nil {
		p.closeFile()
		return nil, err
	}
	return p, nil
}

func (p *Pager) initFile() (err error) {
	size := uint64(p.pageSize) * uint64(initialPageCount)
	err = p.file.Truncate(int64(size))
	if err != nil {
		return fmt.Errorf("extend database file: %w", err)
	}
	p.dat, err = sys.MMap(p.file, size)
	if err != nil {
		return fmt.Errorf("mmap database file: %w", err)
	}
	m := p.meta()
	m.magic = metaMagic
	m.version = metaVersion
	m.pageSize = p.pageSize
	m.pageCount = initialPageCount
	m.freeListHead = 0
	m.rootPage = 0
	m.txId = 0
	p.pageCount = 1
	err = sys.MSync(p.file, p.dat)
	if err != nil {
		return fmt.Errorf("sync database file: %w", err)
	}
	p.logger.Debug("created database file", "path", p.path, "pageSize", p.pageSize)
	return nil
}

func (p *Pager) loadFile(size uint64) (err error) {
	p.dat, err = sys.MMap(p.file, size)
	if err != nil {
		return fmt.Errorf("mmap database file: %w", err)
	}
	m := p.meta()
	if m.magic != metaMagic || m.version != metaVersion {
		return ErrInvalidDatabase
	}
	if m.pageSize != p.pageSize {
		return ErrInvalidDatabase
	}
	// an interrupted growth can leave slack past meta.pageCount, that is
	// tolerated; metadata claiming more pages than the file holds is not
	if uint64(m.pageCount)*uint64(p.pageSize) > size {
		return ErrInvalidDatabase
	}
	// the in-use count is not persisted, every page inside the file is
	// addressable after a reopen
	p.pageCount = m.pageCount
	return nil
}

// meta overlays the metadata header on page 0. The pointer is only valid
// until the next remap, callers must not hold it across a growth.
func (p *Pager) meta() *metaHeader {
	return (*metaHeader)(unsafe.Pointer(&p.dat[0]))
}

func (p *Pager) Close() error {
	if p.txActive {
		p.RollbackTx()
	}
	var err error
	if p.dat != nil {
		if err = sys.MUnmap(p.file, p.dat); err != nil {
			err = fmt.Errorf("munmap database file: %w", err)
		}
		p.dat = nil
	}
	// the lock and fd are released even when munmap failed, a leaked
	// lock would make every reopen of this path fail with ErrLockBusy
	if closeErr := p.closeFile(); err == nil {
		err = closeErr
	}
	return err
}

func (p *Pager) closeFile() error {
	sys.FileUnlock(p.file)
	err := p.file.Close()
	p.file = nil
	if err != nil {
		return fmt.Errorf("close database file: %w", err)
	}
	return nil
}

func (p *Pager) InTx() bool {
	return p.txActive
}

func (p *Pager) BeginTx() error {
	if p.txActive {
		return ErrTransactionActive
	}
	p.txActive = true
	p.txPageCount = p.pageCount
	p.dirty = make(map[PageId]struct{}, 16)
	p.snapshots = make(map[PageId][]byte, 16)
	return nil
}

// CommitTx is a no-op and does not bump txId when nothing was dirtied.
func (p *Pager) CommitTx() error {
	if !p.txActive {
		return ErrNoActiveTransaction
	}
	if len(p.dirty) > 0 {
		// the counter bump lands on page 0 which joins the dirty set
		// here, so a mid-commit failure still rolls back cleanly
		if err := p.ensureSnapshot(metaPageId); err != nil {
			return err
		}
		p.meta().txId++
		if err := sys.MSync(p.file, p.dat); err != nil {
			p.meta().txId--
			return fmt.Errorf("sync database file: %w", err)
		}
	}
	p.clearTx()
	p.stat.txCommitCount.Add(1)
	p.logger.Debug("transaction committed", "txId", p.meta().txId)
	return nil
}

func (p *Pager) RollbackTx() {
	if !p.txActive {
		return
	}
	for id, snap := range p.snapshots {
		copy(p.pageSlice(id), snap)
	}
	// a growth mid-transaction is not undone, the restored metadata has
	// to keep describing the actual file size
	p.meta().pageCount = uint32(uint64(len(p.dat)) / uint64(p.pageSize))
	p.pageCount = p.txPageCount
	p.clearTx()
	p.stat.txRollbackCount.Add(1)
	p.logger.Debug("transaction rolled back")
}

func (p *Pager) clearTx() {
	p.dirty = nil
	p.snapshots = nil
	p.txActive = false
}

func (p *Pager) pageSlice(id PageId) []byte {
	off := uint64(id) * uint64(p.pageSize)
	return p.dat[off : off+uint64(p.pageSize)]
}

func (p *Pager) GetPage(id PageId) ([]byte, error) {
	if id >= p.pageCount {
		return nil, ErrPageOutOfBounds
	}
	return p.pageSlice(id), nil
}

// GetPageForWrite returns a view straight into the mapping, so the
// mutation is immediately visible to reads within the transaction.
func (p *Pager) GetPageForWrite(id PageId) ([]byte, error) {
	if !p.txActive {
		return nil, ErrNoActiveTransaction
	}
	if id >= p.pageCount {
		return nil, ErrPageOutOfBounds
	}
	if err := p.ensureSnapshot(id); err != nil {
		return nil, err
	}
	return p.pageSlice(id), nil
}

func (p *Pager) ensureSnapshot(id PageId) error {
	if _, ok := p.snapshots[id]; ok {
		return nil
	}
	snap := make([]byte, p.pageSize)
	copy(snap, p.pageSlice(id))
	p.snapshots[id] = snap
	p.dirty[id] = struct{}{}
	return nil
}

// AllocPage does not zero the page, the tree does that in createNode.
func (p *Pager) AllocPage() (PageId, error) {
	if !p.txActive {
		return 0, ErrNoActiveTransaction
	}
	if head := p.meta().freeListHead; head != 0 {
		// the next pointer lives in the first 4 bytes of the free page
		// and is read through the mapping before any CoW of that page
		next := *(*PageId)(unsafe.Pointer(&p.pageSlice(head)[0]))
		if err := p.ensureSnapshot(metaPageId); err != nil {
			return 0, err
		}
		p.meta().freeListHead = next
		p.stat.pageAllocCount.Add(1)
		return head, nil
	}
	if p.pageCount == p.meta().pageCount {
		if err := p.growTo(p.meta().pageCount * 2); err != nil {
			return 0, err
		}
	}
	id := p.pageCount
	p.pageCount++
	p.stat.pageAllocCount.Add(1)
	return id, nil
}

func (p *Pager) FreePage(id PageId) error {
	if !p.txActive {
		return ErrNoActiveTransaction
	}
	if id == metaPageId {
		return ErrCannotFreeMetaPage
	}
	page, err := p.GetPageForWrite(id)
	if err != nil {
		return err
	}
	if err := p.ensureSnapshot(metaPageId); err != nil {
		return err
	}
	m := p.meta()
	*(*PageId)(unsafe.Pointer(&page[0])) = m.freeListHead
	m.freeListHead = id
	p.stat.pageFreeCount.Add(1)
	return nil
}

// Grow invalidates all outstanding page views.
func (p *Pager) Grow(newPageCount uint32) error {
	if !p.txActive {
		return ErrNoActiveTransaction
	}
	if newPageCount <= p.meta().pageCount {
		return nil
	}
	return p.growTo(newPageCount)
}

func (p *Pager) growTo(newPageCount uint32) error {
	// snapshot page 0 before the remap so the pre-growth metadata is
	// what a rollback restores
	if err := p.ensureSnapshot(metaPageId); err != nil {
		return err
	}
	newSize := uint64(newPageCount) * uint64(p.pageSize)
	if err := p.file.Truncate(int64(newSize)); err != nil {
		return fmt.Errorf("extend database file: %w", err)
	}
	dat, err := sys.Remap(p.file, newSize, p.dat)
	if err != nil {
		return fmt.Errorf("remap database file: %w", err)
	}
	p.dat = dat
	p.meta().pageCount = newPageCount
	p.stat.growCount.Add(1)
	p.logger.Debug("database file grown", "pageCount", newPageCount)
	return nil
}

func (p *Pager) Sync() error {
	if err := sys.MSync(p.file, p.dat); err != nil {
		return fmt.Errorf("sync database file: %w", err)
	}
	return nil
}

func (p *Pager) PageSize() uint32 {
	return p.pageSize
}

func (p *Pager) PageCount() uint32 {
	return p.pageCount
}

func (p *Pager) TxId() uint64 {
	return p.meta().txId
}

func (p *Pager) RootPage() PageId {
	return p.meta().rootPage
}

func (p *Pager) SetRootPage(id PageId) error {
	if !p.txActive {
		return ErrNoActiveTransaction
	}
	if err := p.ensureSnapshot(metaPageId); err != nil {
		return err
	}
	p.meta().rootPage = id
	return nil
}

func (p *Pager) Stat() ExportStat {
	return p.stat.export()
}
