package zdb

import "unsafe"

const (
	// metaMagic is the first word of every database file, "ZDB!".
	metaMagic   uint32 = 0x5A444221
	metaVersion uint32 = 1

	// metaPageId is never allocated to a node and never freed.
	metaPageId PageId = 0

	// initialPageCount is the capacity of a freshly created file, in pages.
	initialPageCount uint32 = 16
)

// PageId addresses one fixed-size page of the database file.
type PageId = uint32

// metaHeader is overlaid on the start of page 0. Field order matches the
// on-disk layout, byte order is the host's.
type metaHeader struct {
	magic        uint32
	version      uint32
	pageSize     uint32
	pageCount    uint32
	freeListHead PageId
	rootPage     PageId
	txId         uint64
}

const (
	nodeKindInternal uint8 = 1
	nodeKindLeaf     uint8 = 2
)

// nodeHeader is overlaid on the start of every tree node page.
type nodeHeader struct {
	kind     uint8
	_        uint8
	keyCount uint16
}

const nodeHeaderSize = uint32(unsafe.Sizeof(nodeHeader{}))

func nodeHeaderOf(page []byte) *nodeHeader {
	return (*nodeHeader)(unsafe.Pointer(&page[0]))
}
