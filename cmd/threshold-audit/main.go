// threshold-audit prints the per-sensor threshold tables and verifies that no
// two surface classes of one sensor can claim the same index triple. Run it
// after any table change.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/glaciersat/snowline/internal/catalog"
	"github.com/glaciersat/snowline/internal/types"
)

func main() {
	quiet := flag.Bool("quiet", false, "Only report disjointness violations")
	flag.Parse()

	sensors := catalog.Sensors()
	sort.Slice(sensors, func(i, j int) bool { return sensors[i] < sensors[j] })

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	violations := 0

	for _, sensor := range sensors {
		if !*quiet {
			fmt.Fprintf(w, "%s\n", sensor)
			fmt.Fprintln(w, "\tclass\tNDSI\tRatio1\tRatio2")
			for _, class := range types.ClassifiableClasses {
				row := catalog.Get(sensor, class)
				fmt.Fprintf(w, "\t%s\t(%.2f, %.2f)\t(%.2f, %.2f)\t(%.2f, %.2f)\n",
					class, row.NDSIMin, row.NDSIMax, row.R1Min, row.R1Max, row.R2Min, row.R2Max)
			}
		}

		for i, a := range types.ClassifiableClasses {
			for _, b := range types.ClassifiableClasses[i+1:] {
				ra, rb := catalog.Get(sensor, a), catalog.Get(sensor, b)
				if ra.Vacuous() || rb.Vacuous() {
					continue
				}
				if overlaps(ra, rb) {
					violations++
					fmt.Fprintf(os.Stderr, "VIOLATION: %s classes %s and %s overlap\n", sensor, a, b)
				}
			}
		}
	}
	w.Flush()

	if violations > 0 {
		fmt.Fprintf(os.Stderr, "%d disjointness violations\n", violations)
		os.Exit(1)
	}
	if !*quiet {
		fmt.Println("all sensor tables disjoint")
	}
}

// overlaps reports whether two rows admit a common index triple. Open
// intervals overlap only when each pair of bounds leaves room on every axis;
// disjointness on any single axis keeps the classes mutually exclusive.
func overlaps(a, b catalog.ThresholdRow) bool {
	return open(a.NDSIMin, a.NDSIMax, b.NDSIMin, b.NDSIMax) &&
		open(a.R1Min, a.R1Max, b.R1Min, b.R1Max) &&
		open(a.R2Min, a.R2Max, b.R2Min, b.R2Max)
}

func open(aMin, aMax, bMin, bMax float64) bool {
	lo, hi := aMin, aMax
	if bMin > lo {
		lo = bMin
	}
	if bMax < hi {
		hi = bMax
	}
	return lo < hi
}
