package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/tmijieux/tistouchess/internal/engine"
	"github.com/tmijieux/tistouchess/internal/storage"
	"github.com/tmijieux/tistouchess/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	noStore    = flag.Bool("nostore", false, "disable the persistent option/statistics store")
)

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	var store *storage.Store
	if !*noStore {
		s, err := storage.OpenDefault()
		if err != nil {
			log.Printf("persistent store unavailable: %v", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	ttCapacity := engine.DefaultTableSize
	defaultDepth := 0
	if store != nil {
		if opts, err := store.LoadOptions(); err == nil {
			if opts.HashMB > 0 {
				ttCapacity = opts.HashMB * 32 * 1024
			}
			defaultDepth = opts.DefaultDepth
		}
	}

	eng := engine.New(ttCapacity)
	eng.SetDefaultDepth(defaultDepth)
	uci.New(eng, store).Run(os.Stdin)
}
