package main

import (
	"bytes"
	"cmp"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/zdb-io/zdb"
)

func main() {
	err := os.MkdirAll("dbset", 0755)
	if err != nil {
		panic(err)
	}
	// create file with path dbset/quick_start
	pager, err := zdb.OpenPager(zdb.Config{Path: "dbset/quick_start"})
	if err != nil {
		panic(err)
	}
	tree, err := zdb.NewBPTree[uint64, [16]byte](pager, 0)
	if err != nil {
		panic(err)
	}
	err = tree.Open()
	if err != nil {
		panic(err)
	}
	// begin tx, write data, commit
	err = tree.BeginTx()
	if err != nil {
		panic(err)
	}
	for i := uint64(0); i < 64; i++ {
		var v [16]byte
		copy(v[:], fmt.Sprintf("%d", rand.Uint64()))
		err = tree.Put(i, v, cmp.Compare[uint64])
		if err != nil {
			tree.RollbackTx()
			panic(fmt.Errorf("write tx err:%v", err))
		}
	}
	err = tree.CommitTx()
	if err != nil {
		panic(fmt.Errorf("commit err:%v", err))
	}
	// reads need no transaction
	for i := 0; i < 64; i++ {
		k := rand.Uint64N(63)
		v, found := tree.Get(k, cmp.Compare[uint64])
		if !found {
			panic(fmt.Errorf("not found :%d", k))
		}
		fmt.Printf("tree.getVal key=%d, val=%s\n", k, bytes.TrimRight(v[:], "\x00"))
	}
	// close, release the file lock
	err = pager.Close()
	if err != nil {
		panic(fmt.Errorf("close err:%v", err))
	}
}
