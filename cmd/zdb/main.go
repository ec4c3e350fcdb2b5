// Command zdb is a small demo shell over the embedded store: put/get
// typed pairs, seed random data and print the database metadata.
package main

import (
	"bytes"
	"cmp"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/zdb-io/zdb"
)

type demoVal = [16]byte

var dbPath string

func openTree() (*zdb.Pager, *zdb.BPTree[uint64, demoVal], error) {
	pager, err := zdb.OpenPager(zdb.Config{Path: dbPath})
	if err != nil {
		return nil, nil, err
	}
	tree, err := zdb.NewBPTree[uint64, demoVal](pager, 0)
	if err != nil {
		pager.Close()
		return nil, nil, err
	}
	if err = tree.Open(); err != nil {
		pager.Close()
		return nil, nil, err
	}
	return pager, tree, nil
}

func main() {
	root := &cobra.Command{
		Use:           "zdb",
		Short:         "embedded key-value store demo",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "zdb.dat", "database file path")

	root.AddCommand(&cobra.Command{
		Use:   "put <key> <value>",
		Short: "insert or overwrite one pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			var val demoVal
			if len(args[1]) > len(val) {
				return fmt.Errorf("value longer than %d bytes", len(val))
			}
			copy(val[:], args[1])
			pager, tree, err := openTree()
			if err != nil {
				return err
			}
			defer pager.Close()
			if err = tree.BeginTx(); err != nil {
				return err
			}
			if err = tree.Put(key, val, cmp.Compare[uint64]); err != nil {
				tree.RollbackTx()
				return err
			}
			return tree.CommitTx()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "look one key up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return err
			}
			pager, tree, err := openTree()
			if err != nil {
				return err
			}
			defer pager.Close()
			val, found := tree.Get(key, cmp.Compare[uint64])
			if !found {
				return fmt.Errorf("key %d not found", key)
			}
			fmt.Printf("%s\n", bytes.TrimRight(val[:], "\x00"))
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "seed <count>",
		Short: "insert random pairs in one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return err
			}
			pager, tree, err := openTree()
			if err != nil {
				return err
			}
			defer pager.Close()
			if err = tree.BeginTx(); err != nil {
				return err
			}
			for i := uint64(0); i < count; i++ {
				var val demoVal
				copy(val[:], strconv.FormatUint(rand.Uint64(), 16))
				if err = tree.Put(rand.Uint64(), val, cmp.Compare[uint64]); err != nil {
					tree.RollbackTx()
					return err
				}
			}
			if err = tree.CommitTx(); err != nil {
				return err
			}
			stat := pager.Stat()
			fmt.Printf("seeded %d pairs, txId=%d, pageCount=%d, pagesAllocated=%d\n",
				count, pager.TxId(), pager.PageCount(), stat.PageAllocCount)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "stat",
		Short: "print database metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pager, _, err := openTree()
			if err != nil {
				return err
			}
			defer pager.Close()
			fmt.Printf("pageSize:  %d\n", pager.PageSize())
			fmt.Printf("pageCount: %d\n", pager.PageCount())
			fmt.Printf("rootPage:  %d\n", pager.RootPage())
			fmt.Printf("txId:      %d\n", pager.TxId())
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "zdb:", err)
		os.Exit(1)
	}
}
