// Prints the trigger timestamps stored in the TrigData tree of a raw
// data file, one line per entry.
package main

import (
	"flag"
	"fmt"
	"log"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"
)

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		log.Fatal("usage: extracttimestamp <raw-file.root> [...]")
	}

	for _, fname := range flag.Args() {
		if err := extractTimestamps(fname); err != nil {
			log.Fatalf("%s: %v", fname, err)
		}
	}
}

func extractTimestamps(fname string) error {
	file, err := groot.Open(fname)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	obj, err := file.Get("TrigData")
	if err != nil {
		return fmt.Errorf("error getting TrigData tree: %w", err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		return fmt.Errorf("TrigData is not a tree")
	}

	var timestamps [256]uint64
	rvars := []rtree.ReadVar{
		{Name: "EventTimes", Value: &timestamps},
	}
	reader, err := rtree.NewReader(tree, rvars)
	if err != nil {
		return fmt.Errorf("error creating tree reader: %w", err)
	}
	defer reader.Close()

	return reader.Read(func(ctx rtree.RCtx) error {
		fmt.Printf("Entry %d, timestamp: %d\n", ctx.Entry, timestamps[0])
		return nil
	})
}
