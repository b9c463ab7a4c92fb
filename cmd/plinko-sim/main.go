// Command plinko-sim plays seeded drops headlessly and prints where they land.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strings"

	"github.com/playmatatu/plinko/internal/config"
	"github.com/playmatatu/plinko/internal/plinko"
)

func main() {
	var (
		seed    = flag.Uint64("seed", 1, "first seed; drop i uses seed+i")
		drops   = flag.Int("drops", 1000, "number of drops")
		width   = flag.Float64("width", 600, "board width")
		height  = flag.Float64("height", 800, "board height")
		startX  = flag.Float64("x", math.NaN(), "release x of the chip center (default board center)")
		rewards = flag.String("rewards", "", "comma separated reward labels (default built-in set)")
		pegFile = flag.String("pegs", "", "JSON file with a custom peg field, e.g. [] for an empty board")
	)
	flag.Parse()

	labels := config.DefaultRewardLabels
	if *rewards != "" {
		labels = strings.Split(*rewards, ",")
	}
	layout, err := plinko.GenerateLayout(*width, *height, labels, plinko.LayoutOptions{})
	if err != nil {
		log.Fatalf("Invalid board: %v", err)
	}
	if *pegFile != "" {
		pegs, err := loadPegs(*pegFile)
		if err != nil {
			log.Fatalf("Invalid peg file: %v", err)
		}
		layout = layout.WithPegs(pegs)
		log.Printf("Using %d pegs from %s", len(pegs), *pegFile)
	}
	timing := plinko.DefaultTiming()

	counts := make([]int, len(layout.Slots))
	missed, forced, totalSteps := 0, 0, 0
	for i := 0; i < *drops; i++ {
		d := plinko.NewDrop(fmt.Sprintf("sim_%d", i), layout, timing, plinko.NewSeededRNG(*seed+uint64(i)))
		if err := d.Release("sim", "", *startX); err != nil {
			log.Fatalf("Release failed: %v", err)
		}
		for d.Status() == plinko.StatusFalling {
			if _, err := d.Tick(); err != nil {
				log.Fatalf("Tick failed: %v", err)
			}
		}
		out, err := d.Outcome()
		if err != nil {
			log.Fatalf("Outcome failed: %v", err)
		}
		totalSteps += out.Steps
		if out.Forced {
			forced++
		}
		if out.Missed {
			missed++
			continue
		}
		counts[out.SlotIndex]++
	}

	log.Printf("%d drops on a %vx%v board (%d forced, %d missed, %.1f steps avg)",
		*drops, *width, *height, forced, missed, float64(totalSteps)/float64(max(*drops, 1)))
	for i, s := range layout.Slots {
		share := 0.0
		if *drops > 0 {
			share = float64(counts[i]) / float64(*drops)
		}
		log.Printf("  %2d %-16s %6d  %5.1f%% %s", i, s.Label, counts[i], share*100, strings.Repeat("#", int(share*100)))
	}
}

// loadPegs reads a JSON array of pegs ({"x", "y", "radius", "row", "col"}).
func loadPegs(path string) ([]plinko.Peg, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pegs []plinko.Peg
	if err := json.Unmarshal(data, &pegs); err != nil {
		return nil, err
	}
	for i, p := range pegs {
		if !(p.Radius > 0) {
			return nil, fmt.Errorf("peg %d: radius must be positive", i)
		}
	}
	return pegs, nil
}
