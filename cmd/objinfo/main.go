package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/milk9111/twobd/obj"
	"github.com/milk9111/twobd/render"
)

func main() {
	flipV := flag.Bool("flipv", false, "flip texture v coordinates")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: objinfo [-flipv] file.obj...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		data, err := obj.ImportWith(path, obj.Options{FlipV: *flipV})
		if err != nil {
			fmt.Fprintf(os.Stderr, "objinfo: %v\n", err)
			failed = true
			continue
		}
		report(os.Stdout, path, data)
	}
	if failed {
		os.Exit(1)
	}
}

func report(w io.Writer, path string, data render.MeshData) {
	lo, hi := data.Bounds()
	size := hi.Sub(lo)
	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "  vertices:  %d\n", len(data.Vertices))
	fmt.Fprintf(w, "  triangles: %d\n", data.TriangleCount())
	fmt.Fprintf(w, "  bounds:    (%.3f, %.3f, %.3f) .. (%.3f, %.3f, %.3f)\n",
		lo.X(), lo.Y(), lo.Z(), hi.X(), hi.Y(), hi.Z())
	fmt.Fprintf(w, "  size:      %.3f x %.3f x %.3f\n", size.X(), size.Y(), size.Z())
}
