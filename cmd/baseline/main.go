package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"

	"brcstream/internal/brc"
)

func main() {
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file")
	inputFile := flag.String("f", "data/10m.txt", "input file")
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	f, err := os.Open(*inputFile)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	table, err := brc.Baseline(f)
	if err != nil {
		if !errors.Is(err, brc.ErrTruncatedStream) {
			log.Fatal(err)
		}
		log.Printf("ignoring truncated last record: %s", err)
	}
	fmt.Println(brc.Format(table.All()))
}
